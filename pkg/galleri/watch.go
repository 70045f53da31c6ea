package galleri

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// settleTime is how long the input tree must be quiet before a rebuild starts.
var settleTime = 500 * time.Millisecond

// Watch calls rebuild whenever something under root changes, until ctx is done.
// Bursts of events are coalesced into a single rebuild. Rebuild errors are logged.
func Watch(ctx context.Context, root string, rebuild func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs, err := watchTree(w, root)
	if err != nil {
		return err
	}
	klog.Infof("watching %d dirs under %s ...", dirs, root)

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %s", event)

			if event.Has(fsnotify.Create) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if _, err := watchTree(w, event.Name); err != nil {
						klog.Warningf("unable to watch %s: %v", event.Name, err)
					}
				}
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				settled = time.After(settleTime)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Warningf("watch error: %v", err)
		case <-settled:
			settled = nil
			klog.Infof("change detected under %s, rebuilding ...", root)
			if err := rebuild(); err != nil {
				klog.Errorf("rebuild failed: %v", err)
			}
		}
	}
}

// watchTree adds every directory below root to w.
func watchTree(w *fsnotify.Watcher, root string) (int, error) {
	n := 0
	err := godirwalk.Walk(root, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Unsorted:            true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil || !isDir {
				return nil
			}
			if de.IsSymlink() {
				if loop, err := linksToAncestor(path); err != nil || loop {
					klog.Warningf("not watching %s: link loop or unresolvable", path)
					return godirwalk.SkipThis
				}
			}
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			n++
			return nil
		},
	})
	return n, err
}
