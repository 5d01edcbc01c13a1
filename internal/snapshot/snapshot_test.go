package snapshot

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func assertColor(t *testing.T, want color.NRGBA, got color.Color) {
	t.Helper()
	c := color.NRGBAModel.Convert(got).(color.NRGBA)
	assert.InDelta(t, want.R, c.R, 1)
	assert.InDelta(t, want.G, c.G, 1)
	assert.InDelta(t, want.B, c.B, 1)
	assert.InDelta(t, want.A, c.A, 1)
}

func TestScaleKeepsAspect(t *testing.T) {
	src := solid(200, 100, color.NRGBA{255, 215, 0, 255})
	got := Scale(src, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 25), got.Bounds())

	assertColor(t, color.NRGBA{255, 215, 0, 255}, got.At(25, 12))

	assert.Same(t, src, Scale(src, 0))
	assert.Same(t, src, Scale(src, 200))
}

func TestSaveWritesDecodableWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", FileName(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "configurator-20260102-150405.webp", filepath.Base(path))

	require.NoError(t, Save(path, solid(64, 32, color.NRGBA{51, 51, 51, 255}), 32))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
	assertColor(t, color.NRGBA{51, 51, 51, 255}, img.At(10, 10))
}
