package errors

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	hexColorRegex  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorRegex = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[0-9.%]+\s*(,\s*[0-9.%]+\s*){2,3}\)$`)
	namedColor     = regexp.MustCompile(`^[a-zA-Z]{3,32}$`)
)

// ValidateColor checks that s is a CSS color a surface can paint:
// #rgb, #rgba, #rrggbb, #rrggbbaa, rgb()/rgba()/hsl()/hsla(), or a plain name.
func ValidateColor(s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "color cannot be empty")
	}
	if hexColorRegex.MatchString(s) || funcColorRegex.MatchString(s) || namedColor.MatchString(s) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid color: %q", s)
}

// ValidateDimension checks that a size in pixels is positive.
func ValidateDimension(name string, v float64) error {
	if !(v > 0) {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidatePath validates an output or script path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
