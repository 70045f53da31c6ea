package galleri

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Scan walks inDir and returns a Task for every accepted photo whose mirror under outDir
// is missing or older than the photo. Unreadable entries are logged and skipped.
// The order of the returned tasks is unspecified.
func Scan(inDir string, outDir string, exts []string) ([]Task, error) {
	found := []Task{}

	err := godirwalk.Walk(inDir, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Unsorted:            true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if isDir, _ := de.IsDirOrSymlinkToDir(); isDir {
				return enterDir(inDir, path, de)
			}
			if !accepted(path, exts) {
				return nil
			}

			st, err := os.Stat(path)
			if err != nil {
				klog.Warningf("skipping %s: %v", path, err)
				return nil
			}
			if !st.Mode().IsRegular() {
				return nil
			}

			dest, err := mirrorPath(inDir, outDir, path)
			if err != nil {
				klog.Warningf("skipping %s: %v", path, err)
				return nil
			}

			stale, err := isStale(st.ModTime(), dest)
			if err != nil {
				klog.Warningf("skipping %s: %v", path, err)
				return nil
			}
			if !stale {
				klog.V(1).Infof("%s is up to date", dest)
				return nil
			}

			klog.V(1).Infof("found %s -> %s", path, dest)
			found = append(found, Task{Src: path, Dest: dest, ModTime: st.ModTime()})
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			klog.Warningf("skipping %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inDir, err)
	}

	return found, nil
}

// enterDir decides whether a walk below root descends into the directory at path.
// Reserved names would collide with generated output, and links back to an
// ancestor would be followed forever; both are skipped with a warning.
func enterDir(root string, path string, de *godirwalk.Dirent) error {
	if filepath.Clean(path) == filepath.Clean(root) {
		return nil
	}

	if reserved(de.Name()) {
		klog.Warningf("skipping %s: %q is reserved for generated output", path, de.Name())
		return godirwalk.SkipThis
	}

	if de.IsSymlink() {
		loop, err := linksToAncestor(path)
		if err != nil {
			klog.Warningf("skipping %s: %v", path, err)
			return godirwalk.SkipThis
		}
		if loop {
			klog.Warningf("skipping %s: symbolic link loop", path)
			return godirwalk.SkipThis
		}
	}
	return nil
}

// linksToAncestor reports whether the directory link at path resolves to a directory
// containing the link itself.
func linksToAncestor(path string) (bool, error) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false, fmt.Errorf("resolve: %w", err)
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return false, fmt.Errorf("resolve parent: %w", err)
	}
	return within(target, parent), nil
}

// within reports whether p is base or lies below it.
func within(base string, p string) bool {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// mirrorPath maps path, found below inDir, onto the same relative location below outDir.
func mirrorPath(inDir string, outDir string, path string) (string, error) {
	if inDir == "" || path == "" {
		return "", &PathError{Path: path, Err: errNoRelPath}
	}

	rel, err := filepath.Rel(inDir, path)
	if err != nil {
		return "", &PathError{Path: path, Err: err}
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathError{Path: path, Err: errNoRelPath}
	}

	return filepath.Join(outDir, rel), nil
}

// isStale reports whether dest is missing or strictly older than srcTime.
func isStale(srcTime time.Time, dest string) (bool, error) {
	st, err := os.Stat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	return st.ModTime().Before(srcTime), nil
}

func accepted(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return ext != "" && slices.Contains(exts, ext)
}
