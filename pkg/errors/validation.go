package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxJobIDLength bounds identifiers returned by the rendering service.
const maxJobIDLength = 256

// ValidateJobID validates a job identifier before it is placed into a URL path.
// Identifiers are opaque, but they must be non-empty and must not be able to
// escape the path segment they are interpolated into.
func ValidateJobID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidJobID, "job id cannot be empty")
	}

	if len(id) > maxJobIDLength {
		return New(ErrCodeInvalidJobID, "job id too long (max %d characters)", maxJobIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidJobID, "job id contains invalid characters")
		}
	}

	for _, pattern := range []string{"/", "\\", "..", "?", "#"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidJobID, "job id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputPath validates the destination of a rendered artifact.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Path cannot name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file, got directory %q", path)
	}

	return nil
}
