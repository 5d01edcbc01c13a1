// Package snapshot writes an image of the configured product as a lossless WebP file.
package snapshot

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Scale resizes img to width pixels wide, keeping the aspect ratio. A non-positive width
// or a width equal to the source returns img unchanged.
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() || b.Dx() == 0 {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w as WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("snapshot: webp encode: %w", err)
	}
	return nil
}

// FileName returns the default snapshot name for t, e.g. "configurator-20260102-150405.webp".
func FileName(t time.Time) string {
	return "configurator-" + t.Format("20060102-150405") + ".webp"
}

// Save scales img to width and writes it to path, creating parent directories.
func Save(path string, img image.Image, width int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := Encode(f, Scale(img, width)); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
