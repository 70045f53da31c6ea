package galleri

import "time"

const (
	// ThumbDir is the per-album directory holding thumbnails, named like their photo.
	ThumbDir = "thumbnails"
	// StaticDir is where theme assets are mirrored under the output root.
	StaticDir = "static"
	// IndexFile is the page written into every album directory.
	IndexFile = "index.html"
)

// Task pairs a source photo with its mirrored location in the output tree.
type Task struct {
	Src     string
	Dest    string
	ModTime time.Time
}

// ImageEntry is a photo listed on an album page.
type ImageEntry struct {
	Image     string
	Thumbnail string
}

// Album describes one output directory.
type Album struct {
	Title  string
	Images []ImageEntry
	// Albums are child directory names, each with a trailing slash.
	Albums []string
	// Thumbnail represents the album; empty when it has no photos.
	Thumbnail string
}

// Theme points an album page back at the mirrored static assets.
type Theme struct {
	URL string
}

// Context is handed to the renderer for every album page.
type Context struct {
	Album Album
	Theme Theme
}

func reserved(name string) bool {
	return name == ThumbDir || name == StaticDir
}
