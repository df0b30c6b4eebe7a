package constants

import "strings"

// AllowedExtensions holds the image extensions the scanner accepts.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// StoredImageExt is the fallback extension for images persisted during a request.
const StoredImageExt = "jpg"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether the extension (with or without a leading
// dot) is an accepted image format.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// ExtFromMIME maps a data-URL MIME type to a file extension. Unknown types
// fall back to StoredImageExt; tesseract sniffs content anyway.
func ExtFromMIME(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return StoredImageExt
	}
}
