package galleri

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// MirrorAssets copies the theme's asset tree at staticRoot into outDir/static, skipping
// files that are already up to date. A missing staticRoot is not an error.
// It returns the number of files copied.
func MirrorAssets(staticRoot string, outDir string) (int, error) {
	if _, err := os.Stat(staticRoot); errors.Is(err, fs.ErrNotExist) {
		klog.V(1).Infof("no theme assets at %s", staticRoot)
		return 0, nil
	}

	dest := filepath.Join(outDir, StaticDir)
	copied := 0

	err := godirwalk.Walk(staticRoot, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Unsorted:            true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsSymlink() {
				if loop, err := linksToAncestor(path); err == nil && loop {
					klog.Warningf("skipping %s: symbolic link loop", path)
					return godirwalk.SkipThis
				}
			}

			rel, err := filepath.Rel(staticRoot, path)
			if err != nil {
				return fmt.Errorf("rel: %w", err)
			}
			target := filepath.Join(dest, rel)

			st, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat: %w", err)
			}

			if st.IsDir() {
				if err := os.MkdirAll(target, 0o755); err != nil {
					return fmt.Errorf("mkdir: %w", err)
				}
				return nil
			}

			stale, err := isStale(st.ModTime(), target)
			if err != nil {
				return err
			}
			if !stale {
				return nil
			}

			klog.V(1).Infof("copying asset %s -> %s", path, target)
			if err := copy.Copy(path, target, deepCopy); err != nil {
				return fmt.Errorf("copy: %w", err)
			}
			copied++
			assetsCopiedTotal.Inc()
			return nil
		},
	})
	if err != nil {
		return copied, fmt.Errorf("mirror %s: %w", staticRoot, err)
	}

	klog.Infof("copied %d assets from %s", copied, staticRoot)
	return copied, nil
}
