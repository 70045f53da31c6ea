package galleri

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMirrorAssets(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "theme", "static")
	out := filepath.Join(root, "out")

	writeFile(t, filepath.Join(src, "style.css"), "body {}")
	writeFile(t, filepath.Join(src, "js", "app.js"), "alert(1)")
	if err := os.MkdirAll(filepath.Join(src, "fonts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	n, err := MirrorAssets(src, out)
	if err != nil {
		t.Fatalf("MirrorAssets() error: %v", err)
	}
	if n != 2 {
		t.Errorf("MirrorAssets() copied %d files, want 2", n)
	}

	got, err := os.ReadFile(filepath.Join(out, StaticDir, "js", "app.js"))
	if err != nil || string(got) != "alert(1)" {
		t.Errorf("mirrored app.js = %q, %v", got, err)
	}
	if st, err := os.Stat(filepath.Join(out, StaticDir, "fonts")); err != nil || !st.IsDir() {
		t.Errorf("empty asset directory was not mirrored: %v", err)
	}

	n, err = MirrorAssets(src, out)
	if err != nil {
		t.Fatalf("second MirrorAssets() error: %v", err)
	}
	if n != 0 {
		t.Errorf("second MirrorAssets() copied %d files, want 0", n)
	}

	future := time.Now().Add(time.Hour)
	writeFile(t, filepath.Join(src, "style.css"), "body { color: red }")
	if err := os.Chtimes(filepath.Join(src, "style.css"), future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	n, err = MirrorAssets(src, out)
	if err != nil {
		t.Fatalf("third MirrorAssets() error: %v", err)
	}
	if n != 1 {
		t.Errorf("MirrorAssets() after touching style.css copied %d files, want 1", n)
	}
	got, err = os.ReadFile(filepath.Join(out, StaticDir, "style.css"))
	if err != nil || string(got) != "body { color: red }" {
		t.Errorf("mirrored style.css = %q, %v", got, err)
	}
}

func TestMirrorAssetsMissingTheme(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	n, err := MirrorAssets(filepath.Join(t.TempDir(), "nope"), out)
	if err != nil || n != 0 {
		t.Errorf("MirrorAssets(missing) = %d, %v; want 0, nil", n, err)
	}
	if exists(filepath.Join(out, StaticDir)) {
		t.Error("MirrorAssets(missing) created the static directory")
	}
}
