package galleri

import (
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// panickyCodec panics while decoding any file whose name contains "panic".
type panickyCodec struct {
	Codec
}

func (p *panickyCodec) Decode(path string) (image.Image, error) {
	if strings.Contains(filepath.Base(path), "panic") {
		panic("decoder exploded")
	}
	return p.Codec.Decode(path)
}

func TestTranscodeIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	c := testConfig(root)
	c.Workers = 2

	names := []string{"good1.jpg", "broken.jpg", "panic.jpg", "good2.jpg"}
	tasks := []Task{}
	for _, n := range names {
		src := filepath.Join(c.Input, n)
		if n == "broken.jpg" {
			writeFile(t, src, "not a photo")
		} else {
			writeJPEG(t, src, 64, 48)
		}
		tasks = append(tasks, Task{Src: src, Dest: filepath.Join(c.Output, n)})
	}

	okBefore := testutil.ToFloat64(transcodesTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(transcodesTotal.WithLabelValues("error"))

	results := Transcode(c, &panickyCodec{Codec: &BildCodec{Quality: 80}}, tasks)
	if len(results) != len(tasks) {
		t.Fatalf("Transcode() returned %d results, want %d", len(results), len(tasks))
	}

	for i, r := range results {
		if r.Task != tasks[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Task.Src, tasks[i].Src)
		}

		wantErr := names[i] == "broken.jpg" || names[i] == "panic.jpg"
		if (r.Err != nil) != wantErr {
			t.Errorf("%s: err = %v, want error=%v", names[i], r.Err, wantErr)
		}
		if wantErr {
			var ce *CodecError
			if !errors.As(r.Err, &ce) {
				t.Errorf("%s: err = %v, want *CodecError", names[i], r.Err)
			}
			continue
		}

		if !exists(r.Task.Dest) || !exists(thumbPath(r.Task.Dest)) {
			t.Errorf("%s: rendition or thumbnail missing", names[i])
		}
	}

	if got := testutil.ToFloat64(transcodesTotal.WithLabelValues("ok")) - okBefore; got != 2 {
		t.Errorf("ok transcodes counted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(transcodesTotal.WithLabelValues("error")) - errBefore; got != 2 {
		t.Errorf("failed transcodes counted = %v, want 2", got)
	}
}

func TestTranscodeEmpty(t *testing.T) {
	if got := Transcode(testConfig(t.TempDir()), &BildCodec{Quality: 80}, nil); len(got) != 0 {
		t.Errorf("Transcode(nil) = %v, want no results", got)
	}
}
