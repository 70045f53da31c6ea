// Package galleri builds a static photo gallery from a directory tree of photos.
package galleri

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Report summarizes what a build did.
type Report struct {
	Scanned      int
	Transcoded   int
	Failed       []Result
	AssetsCopied int
	Albums       int
	Duration     time.Duration
}

// Build converts stale photos, mirrors theme assets, and renders album pages with r.
// Photos that fail to convert do not stop the build; they are returned as a *TranscodeError
// alongside the report once every page has been written.
func Build(c *Config, r Renderer) (*Report, error) {
	start := time.Now()
	klog.Infof("build: %s -> %s", c.Input, c.Output)

	codec, err := NewCodec(c)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.Output, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	tasks, err := Scan(c.Input, c.Output, c.Extensions)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	klog.Infof("%d photos need converting", len(tasks))

	rep := &Report{Scanned: len(tasks)}

	var results []Result
	var g errgroup.Group
	g.Go(func() error {
		results = Transcode(c, codec, tasks)
		return nil
	})
	g.Go(func() error {
		n, err := MirrorAssets(c.StaticRoot(), c.Output)
		rep.AssetsCopied = n
		if err != nil {
			return fmt.Errorf("assets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}

	for _, res := range results {
		if res.Err != nil {
			rep.Failed = append(rep.Failed, res)
			continue
		}
		rep.Transcoded++
	}

	rep.Albums, err = Assemble(c.Output, c.Extensions, r)
	if err != nil {
		return rep, fmt.Errorf("albums: %w", err)
	}

	rep.Duration = time.Since(start)
	buildDuration.Observe(rep.Duration.Seconds())
	klog.Infof("build done in %s: %d converted, %d failed, %d assets, %d albums",
		rep.Duration.Round(time.Millisecond), rep.Transcoded, len(rep.Failed), rep.AssetsCopied, rep.Albums)

	if len(rep.Failed) > 0 {
		return rep, &TranscodeError{Failed: rep.Failed, Total: len(tasks)}
	}
	return rep, nil
}
