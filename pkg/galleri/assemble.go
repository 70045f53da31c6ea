package galleri

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Assemble walks outDir and renders an index page into every directory except the
// reserved thumbnail and static directories, which are not descended into.
// It returns the number of pages written.
func Assemble(outDir string, exts []string, r Renderer) (int, error) {
	pages := 0

	err := godirwalk.Walk(outDir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(outDir, path)
			if err != nil {
				return fmt.Errorf("rel: %w", err)
			}

			if rel != "." && reserved(de.Name()) {
				return godirwalk.SkipThis
			}

			a, err := readAlbum(path, exts)
			if err != nil {
				return err
			}
			if rel == "." {
				a.Title = rootTitle(outDir)
			}

			bs, err := r.Render(IndexTemplate, &Context{Album: *a, Theme: Theme{URL: staticPath(rel)}})
			if err != nil {
				return err
			}

			p := filepath.Join(path, IndexFile)
			klog.V(1).Infof("writing album index to %s (%d images, %d albums)", p, len(a.Images), len(a.Albums))
			if err := os.WriteFile(p, bs, 0o644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}

			pages++
			albumsRenderedTotal.Inc()
			return nil
		},
	})
	if err != nil {
		return pages, fmt.Errorf("assemble %s: %w", outDir, err)
	}

	klog.Infof("wrote %d album pages", pages)
	return pages, nil
}

// readAlbum builds the album for dir from its direct children, sorted by name.
func readAlbum(dir string, exts []string) (*Album, error) {
	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	sort.Sort(des)

	a := &Album{
		Title:  filepath.Base(dir),
		Images: []ImageEntry{},
		Albums: []string{},
	}

	for _, de := range des {
		name := de.Name()
		switch {
		case de.IsDir():
			if !reserved(name) {
				a.Albums = append(a.Albums, name+"/")
			}
		case de.IsRegular() && accepted(name, exts):
			a.Images = append(a.Images, ImageEntry{
				Image:     name,
				Thumbnail: ThumbDir + "/" + name,
			})
		}
	}

	if len(a.Images) > 0 {
		a.Thumbnail = a.Images[0].Thumbnail
	}
	return a, nil
}

// staticPath climbs from an album at rel back to the output root's static directory.
func staticPath(rel string) string {
	parts := []string{}
	if rel != "." && rel != "" {
		for range strings.Split(filepath.ToSlash(rel), "/") {
			parts = append(parts, "..")
		}
	}
	return strings.Join(append(parts, StaticDir), "/")
}

func rootTitle(outDir string) string {
	if abs, err := filepath.Abs(outDir); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(outDir)
}
