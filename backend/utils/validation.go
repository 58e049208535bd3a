package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadSize caps reward media uploads at 10 MB.
const MaxUploadSize = 10 << 20

var allowedUploadExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ValidateUpload checks a reward media upload before it touches object
// storage. Returns a caller-facing message on rejection.
func ValidateUpload(filename string, size int64) error {
	if size > MaxUploadSize {
		return fmt.Errorf("file exceeds the %d MB limit", MaxUploadSize>>20)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExtensions[ext] {
		return fmt.Errorf("unsupported file extension %q", ext)
	}
	return nil
}

// ContentTypeForExt maps an allowed upload extension to its content type.
func ContentTypeForExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
