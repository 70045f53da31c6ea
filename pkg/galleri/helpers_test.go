package galleri

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeJPEG writes a gradient JPEG of the given size, creating parent directories.
func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8((x * 255) / width), G: uint8((y * 255) / height), B: 128, A: 255})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config %s: %v", path, err)
	}
	return ic.Width, ic.Height
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// recordingRenderer keeps every context it is asked to render, keyed by album title.
type recordingRenderer struct {
	mu       sync.Mutex
	contexts map[string]Context
	err      error
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{contexts: map[string]Context{}}
}

func (r *recordingRenderer) Render(name string, c *Context) ([]byte, error) {
	if r.err != nil {
		return nil, &TemplateError{Name: name, Err: r.err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[c.Album.Title] = *c
	return []byte("<html>" + c.Album.Title + "</html>"), nil
}

func testConfig(root string) *Config {
	c := &Config{
		Input:     filepath.Join(root, "in"),
		Output:    filepath.Join(root, "out"),
		Thumbnail: Box{Width: 100, Height: 100},
		Theme:     filepath.Join(root, "theme"),
	}
	c.applyDefaults()
	return c
}
