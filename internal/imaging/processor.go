// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes gallery uploads: it applies EXIF orientation,
// strips metadata and writes an original plus a thumbnail under the uploads
// directory.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/innovationlab/innolab/internal/util"
)

const (
	// DefaultMaxBytes bounds a single upload.
	DefaultMaxBytes = 10 << 20
	// ThumbnailSize is the bounding box of generated thumbnails.
	ThumbnailSize = 480

	galleryDir = "gallery"
	origDir    = "originals"
	thumbDir   = "thumbs"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image exceeds upload limit")
)

// Result describes a stored upload. URLs are rooted at the public uploads
// prefix.
type Result struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Processor writes gallery images below uploadDir and maps them to URLs
// below urlPrefix.
type Processor struct {
	uploadDir string
	urlPrefix string
	maxBytes  int64
}

// NewProcessor creates a processor serving files from /uploads.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
		urlPrefix: "/uploads",
		maxBytes:  DefaultMaxBytes,
	}
}

// Process decodes an uploaded image and stores the normalized original and
// its thumbnail under fresh uuid names.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	// WebP has no pure Go encoder; it is stored as JPEG.
	if format == "webp" {
		format = "jpeg"
	}
	name := uuid.NewString() + extension(format)

	original, err := encodeImage(img, format, 90)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	if err := p.save(origDir, name, original); err != nil {
		return nil, err
	}

	thumb, err := encodeImage(imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos), format, 80)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	if err := p.save(thumbDir, name, thumb); err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Result{
		ImageURL:     path.Join(p.urlPrefix, galleryDir, origDir, name),
		ThumbnailURL: path.Join(p.urlPrefix, galleryDir, thumbDir, name),
		Width:        b.Dx(),
		Height:       b.Dy(),
		MimeType:     mimeType(format),
		Size:         int64(len(original)),
	}, nil
}

// Remove deletes the files behind locally stored URLs. URLs pointing
// elsewhere are ignored.
func (p *Processor) Remove(urls ...string) error {
	prefix := p.urlPrefix + "/"
	for _, u := range urls {
		if !strings.HasPrefix(u, prefix) {
			continue
		}
		rel := strings.TrimPrefix(u, prefix)
		full, err := util.SafeJoinPath(p.uploadDir, filepath.FromSlash(rel))
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", rel, err)
		}
	}
	return nil
}

func (p *Processor) save(sub, name string, data []byte) error {
	dir, err := util.SafeJoinPath(p.uploadDir, galleryDir, sub)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// readExifOrientation returns the EXIF orientation tag, or 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
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

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the content type. TIFF is rejected outright
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	ct := http.DetectContentType(data)
	switch {
	case strings.Contains(ct, "tiff"):
		return ""
	case strings.Contains(ct, "jpeg"):
		return "jpeg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "gif"):
		return "gif"
	case strings.Contains(ct, "webp"):
		return "webp"
	default:
		return ""
	}
}

func extension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func mimeType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
