package storage

import (
	"path/filepath"
	"strings"
)

// contentTypes maps the document extensions the service accepts to their
// MIME types.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ContentType infers the MIME type for a stored key from its extension,
// falling back to application/octet-stream.
func ContentType(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ContentTypeForUpload infers the MIME type for an uploaded file: the
// client-declared type wins when present, otherwise the extension decides,
// otherwise "unknown" is recorded.
func ContentTypeForUpload(declared, filename string) string {
	if declared != "" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "unknown"
}
