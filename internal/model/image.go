// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"path"
	"strings"
)

// Supported image MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypeSVG  = "image/svg+xml"
)

// uploadExtensions maps accepted upload types to the extension they are stored with.
var uploadExtensions = map[string]string{
	MimeTypeJPEG: ".jpg",
	MimeTypePNG:  ".png",
	MimeTypeGIF:  ".gif",
	MimeTypeWebP: ".webp",
}

// servedTypes maps stored image extensions to the Content-Type they are served with.
var servedTypes = map[string]string{
	".jpg":  MimeTypeJPEG,
	".jpeg": MimeTypeJPEG,
	".png":  MimeTypePNG,
	".gif":  MimeTypeGIF,
	".webp": MimeTypeWebP,
	".svg":  MimeTypeSVG,
}

// SupportedImageTypes returns the MIME types accepted for upload.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedImageType checks if a MIME type is accepted for upload.
func IsSupportedImageType(mimeType string) bool {
	_, ok := uploadExtensions[mimeType]
	return ok
}

// ExtensionForMimeType returns the stored extension for an upload type,
// or ".jpg" when the type is unknown.
func ExtensionForMimeType(mimeType string) string {
	if ext, ok := uploadExtensions[mimeType]; ok {
		return ext
	}
	return ".jpg"
}

// ContentTypeForFilename returns the Content-Type of a stored image and
// whether the extension is a known image extension.
func ContentTypeForFilename(filename string) (string, bool) {
	ct, ok := servedTypes[strings.ToLower(path.Ext(filename))]
	return ct, ok
}

// ImageRef describes an uploaded image and how to embed it.
type ImageRef struct {
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Markdown     string `json:"markdown"`
}
