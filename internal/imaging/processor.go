// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging shrinks and recompresses uploaded post images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/blog-editor/internal/model"
)

// Defaults applied by NewOptimizer.
const (
	DefaultMaxDimension = 1920
	DefaultJPEGQuality  = 85
)

// Result is the outcome of Optimize.
type Result struct {
	Data        []byte
	Extension   string
	ContentType string

	// Optimized is false when the original bytes were kept.
	Optimized bool
}

// Optimizer applies EXIF orientation, fits images into a square bounding
// box and recompresses them. It never fails: whenever processing is not
// possible or not worthwhile the original bytes are returned.
type Optimizer struct {
	MaxDimension int
	JPEGQuality  int
}

// NewOptimizer creates an optimizer with the default limits.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		MaxDimension: DefaultMaxDimension,
		JPEGQuality:  DefaultJPEGQuality,
	}
}

// Optimize processes data declared as contentType. GIFs are returned as they
// are to keep animation. WebP is only touched when it must shrink, and is then
// re-encoded as JPEG because there is no pure Go WebP encoder.
func (o *Optimizer) Optimize(data []byte, contentType string) Result {
	original := Result{
		Data:        data,
		Extension:   model.ExtensionForMimeType(contentType),
		ContentType: contentType,
	}

	format := detectFormat(data)
	if format == "" || formatToMimeType(format) != contentType || format == "gif" {
		return original
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return original
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	mustShrink := bounds.Dx() > o.MaxDimension || bounds.Dy() > o.MaxDimension
	if format == "webp" && !mustShrink {
		return original
	}
	if mustShrink {
		img = imaging.Fit(img, o.MaxDimension, o.MaxDimension, imaging.Lanczos)
	}

	processed, err := encodeImage(img, format, o.JPEGQuality)
	if err != nil || len(processed) >= len(data) {
		return original
	}

	out := Result{
		Data:        processed,
		Extension:   model.ExtensionForMimeType(contentType),
		ContentType: contentType,
		Optimized:   true,
	}
	if format == "webp" {
		out.Extension = ".jpg"
		out.ContentType = model.MimeTypeJPEG
	}
	return out
}

// DetectContentType returns the MIME type sniffed from data, without
// parameters.
func DetectContentType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
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

// encodeImage encodes an image to bytes with the specified format and quality.
// WebP and unknown formats are written as JPEG.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encoding gif: %w", err)
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
