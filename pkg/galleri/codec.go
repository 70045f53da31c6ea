package galleri

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Codec decodes, resamples and encodes photos.
type Codec interface {
	Decode(path string) (image.Image, error)
	Resample(img image.Image, width int, height int) image.Image
	Encode(path string, img image.Image) error
}

// NewCodec returns the codec named by the configuration.
func NewCodec(c *Config) (Codec, error) {
	switch c.Codec {
	case "", "bild":
		return &BildCodec{Quality: c.Quality}, nil
	case "imaging":
		return &ImagingCodec{Quality: c.Quality}, nil
	default:
		return nil, &ConfigError{Err: fmt.Errorf("unknown codec %q", c.Codec)}
	}
}

// BildCodec uses bild with a Lanczos filter and honors the EXIF orientation tag.
type BildCodec struct {
	Quality int
}

func (b *BildCodec) Decode(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, &CodecError{Op: "decode", Path: path, Err: err}
	}
	return orient(img, orientation(path)), nil
}

func (b *BildCodec) Resample(img image.Image, width int, height int) image.Image {
	return transform.Resize(img, width, height, transform.Lanczos)
}

func (b *BildCodec) Encode(path string, img image.Image) error {
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(b.Quality)
	case ".png":
		enc = imgio.PNGEncoder()
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		return &CodecError{Op: "encode", Path: path, Err: fmt.Errorf("unsupported format %q", filepath.Ext(path))}
	}

	if err := imgio.Save(path, img, enc); err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}
	return nil
}

// ImagingCodec uses disintegration/imaging, which applies EXIF orientation on its own.
type ImagingCodec struct {
	Quality int
}

func (m *ImagingCodec) Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &CodecError{Op: "decode", Path: path, Err: err}
	}
	return img, nil
}

func (m *ImagingCodec) Resample(img image.Image, width int, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func (m *ImagingCodec) Encode(path string, img image.Image) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(m.Quality)); err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}
	return nil
}

// orientation returns the EXIF orientation of the photo at path, or 1 if it has none.
func orientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// orient turns img upright according to an EXIF orientation value.
func orient(img image.Image, o int) image.Image {
	rotate := func(i image.Image, angle float64) image.Image {
		return transform.Rotate(i, angle, &transform.RotationOptions{ResizeBounds: true})
	}

	switch o {
	case 2:
		return transform.FlipH(img)
	case 3:
		return rotate(img, 180)
	case 4:
		return transform.FlipV(img)
	case 5:
		return rotate(transform.FlipH(img), 270)
	case 6:
		return rotate(img, 90)
	case 7:
		return rotate(transform.FlipH(img), 90)
	case 8:
		return rotate(img, 270)
	}
	return img
}

// fitBox returns the largest size within box that keeps the aspect ratio of b.
// Images that already fit are left at their size.
func fitBox(b image.Rectangle, box Box) (int, int) {
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0
	}

	scale := math.Min(float64(box.Width)/float64(w), float64(box.Height)/float64(h))
	if scale >= 1 {
		return w, h
	}

	return max(int(math.Round(float64(w)*scale)), 1), max(int(math.Round(float64(h)*scale)), 1)
}
