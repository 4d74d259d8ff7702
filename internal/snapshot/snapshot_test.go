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

func frame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: 0x55, B: 0xf7, A: 255})
		}
	}
	return img
}

func TestDownscale(t *testing.T) {
	src := frame(400, 300)

	assert.Same(t, image.Image(src), Downscale(src, 0))
	assert.Same(t, image.Image(src), Downscale(src, 400))

	small := Downscale(src, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 75), small.Bounds())
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 10, 14, 9, 30, 5, 42*int(time.Millisecond), time.UTC)
	assert.Equal(t, "heroavatar_20261014_093005_042.webp", FileName(ts))
}

func TestSave_WritesDecodableWebP(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := Save(frame(64, 32), Options{
		Dir:      dir,
		MaxWidth: 32,
		Now:      func() time.Time { return ts },
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(ts)), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
}

func TestSave_EmptyFrame(t *testing.T) {
	_, err := Save(image.NewRGBA(image.Rectangle{}), Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrEmptyFrame)
}
