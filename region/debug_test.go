package region

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveDebugImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))

	path := SaveDebugImage(dir, "crop", img)
	if path == "" {
		t.Fatal("SaveDebugImage() returned no path")
	}
	if !strings.HasPrefix(filepath.Base(path), "crop_") {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
}
