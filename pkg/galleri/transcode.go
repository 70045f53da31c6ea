package galleri

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// progressInterval is how often transcode progress is logged.
var progressInterval = 2 * time.Second

// Result is the outcome of converting a single Task.
type Result struct {
	Task Task
	Err  error
}

// Transcode converts tasks on a pool of c.Workers goroutines. A failed task never stops
// the others; every outcome is returned, in the order of tasks.
func Transcode(c *Config, codec Codec, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var done atomic.Int64
	stop := make(chan struct{})
	logged := make(chan struct{})
	go func() {
		defer close(logged)
		reportProgress(&done, len(tasks), stop)
	}()

	var g errgroup.Group
	g.SetLimit(c.workers())
	klog.Infof("converting %d photos with %d workers ...", len(tasks), c.workers())

	for i, t := range tasks {
		g.Go(func() error {
			err := safeConvert(t, c, codec)
			results[i] = Result{Task: t, Err: err}
			done.Add(1)

			if err != nil {
				klog.Errorf("convert %s failed: %v", t.Src, err)
				transcodesTotal.WithLabelValues("error").Inc()
				return nil
			}
			transcodesTotal.WithLabelValues("ok").Inc()
			return nil
		})
	}

	// workers never return errors; failures live in results
	_ = g.Wait()
	close(stop)
	<-logged

	klog.Infof("converted %d/%d photos", done.Load(), len(tasks))
	return results
}

// safeConvert keeps a codec panic from taking down sibling tasks.
func safeConvert(t Task, c *Config, codec Codec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CodecError{Op: "convert", Path: t.Src, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return convert(t, c, codec)
}

func reportProgress(done *atomic.Int64, total int, stop <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			klog.Infof("converted %d/%d photos ...", done.Load(), total)
		}
	}
}
