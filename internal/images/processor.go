// Package images prepares photo attachments for storage: a recompressed JPEG
// plus a small thumbnail, both written into the app data directory.
package images

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	Quality       = 80
	ThumbnailSize = 200 // longest edge in pixels
	TempMaxAge    = 24 * time.Hour

	imagesDir = "expense_images"
	tempDir   = "temp_images"
)

// Stored is the pair of files produced for one attachment.
type Stored struct {
	ImagePath     string
	ThumbnailPath string
}

type Processor struct {
	imagesDir string
	tempDir   string
}

func NewProcessor(dataDir string) (*Processor, error) {
	p := &Processor{
		imagesDir: filepath.Join(dataDir, imagesDir),
		tempDir:   filepath.Join(dataDir, tempDir),
	}
	for _, dir := range []string{p.imagesDir, p.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return p, nil
}

// Dir is where stored images live.
func (p *Processor) Dir() string { return p.imagesDir }

// Process decodes src (JPEG or PNG), writes a compressed copy and a thumbnail
// and returns their paths. The source file is left untouched.
func (p *Processor) Process(ctx context.Context, src string) (Stored, error) {
	f, err := os.Open(src)
	if err != nil {
		return Stored{}, fmt.Errorf("open source image: %w", err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return Stored{}, fmt.Errorf("decode %s: %w", src, err)
	}

	imagePath, err := p.store(img, "compressed_")
	if err != nil {
		return Stored{}, err
	}
	thumbPath, err := p.store(Thumbnail(img, ThumbnailSize), "thumbnail_")
	if err != nil {
		_ = os.Remove(imagePath)
		return Stored{}, err
	}

	slog.DebugContext(ctx, "Stored image attachment",
		"source", src,
		"format", format,
		"image", imagePath,
		"thumbnail", thumbPath)

	return Stored{ImagePath: imagePath, ThumbnailPath: thumbPath}, nil
}

// store encodes img into a temp file, then moves it under a random name in
// the images directory so a partial write never becomes visible.
func (p *Processor) store(img image.Image, prefix string) (string, error) {
	tmp, err := os.CreateTemp(p.tempDir, prefix+"*.jpg")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: Quality}); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := filepath.Join(p.imagesDir, uuid.NewString()+".jpg")
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("move image into place: %w", err)
	}
	return dst, nil
}

// Thumbnail scales img so its longest edge is size pixels, keeping the
// aspect ratio.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if longest == 0 {
		return img
	}
	nw := max(1, w*size/longest)
	nh := max(1, h*size/longest)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Remove deletes stored files, ignoring ones already gone.
func (p *Processor) Remove(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CleanupTemp removes staging files last modified more than TempMaxAge before
// now and returns how many were removed.
func (p *Processor) CleanupTemp(ctx context.Context, now time.Time) (int, error) {
	entries, err := os.ReadDir(p.tempDir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}
	cutoff := now.Add(-TempMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(p.tempDir, entry.Name())); err != nil {
				slog.WarnContext(ctx, "Failed to remove temp image", "file", entry.Name(), "error", err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
