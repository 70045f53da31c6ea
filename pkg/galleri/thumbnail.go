package galleri

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// deepCopy copies through symbolic links so the rendition holds the photo's bytes.
var deepCopy = copy.Options{
	OnSymlink: func(string) copy.SymlinkAction { return copy.Deep },
}

// thumbPath returns where the thumbnail for a rendition at dest lives.
func thumbPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), ThumbDir, filepath.Base(dest))
}

// convert writes the thumbnail and the main rendition for t, decoding the source once.
// On failure, partial outputs are removed so the next build retries the photo.
func convert(t Task, c *Config, codec Codec) (err error) {
	tp := thumbPath(t.Dest)
	if err := os.MkdirAll(filepath.Dir(tp), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	defer func() {
		if err != nil {
			removePartial(tp, t.Dest)
		}
	}()

	img, err := codec.Decode(t.Src)
	if err != nil {
		return err
	}

	if err := createResized(codec, img, c.Thumbnail, tp); err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}

	if c.Resize != nil {
		if err := createResized(codec, img, *c.Resize, t.Dest); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
		return nil
	}

	klog.V(1).Infof("copying %s -> %s", t.Src, t.Dest)
	if err := copy.Copy(t.Src, t.Dest, deepCopy); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

func removePartial(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			klog.Warningf("unable to remove partial output %s: %v", p, err)
		}
	}
}

func createResized(codec Codec, img image.Image, box Box, path string) error {
	x, y := fitBox(img.Bounds(), box)
	if x == 0 || y == 0 {
		return &CodecError{Op: "resample", Path: path, Err: fmt.Errorf("empty image bounds %v", img.Bounds())}
	}

	klog.V(1).Infof("creating %dx%d image: %s - %v", x, y, path, img.Bounds())
	return codec.Encode(path, codec.Resample(img, x, y))
}
