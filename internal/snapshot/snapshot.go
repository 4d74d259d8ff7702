// Package snapshot writes rendered frames to disk as lossless WebP.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

var ErrEmptyFrame = errors.New("snapshot: empty frame")

// Options control where and how frames are written.
type Options struct {
	Dir      string
	MaxWidth int // 0 keeps the source width
	Now      func() time.Time
}

// Downscale shrinks img to maxWidth keeping the aspect ratio. Images that
// already fit are returned unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FileName is the snapshot name for a capture time.
func FileName(t time.Time) string {
	return fmt.Sprintf("heroavatar_%s_%03d.webp", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}

// Save encodes img into opts.Dir and returns the written path.
func Save(img image.Image, opts Options) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", ErrEmptyFrame
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	outPath := filepath.Join(opts.Dir, FileName(now()))
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}

	if err := nativewebp.Encode(f, Downscale(img, opts.MaxWidth), nil); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("WebP encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return outPath, nil
}
