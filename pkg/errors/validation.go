package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath checks that path names a writable-looking file location.
// It rejects empty paths, directories (trailing separator), control
// characters and extensions other than the supported ones.
func ValidateOutputPath(path string, exts ...string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains control characters")
		}
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "output path %q is a directory", path)
	}
	if len(exts) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return New(ErrCodeInvalidPath, "unsupported extension %q (want one of %s)", ext, strings.Join(exts, ", "))
}

// ValidatePositive checks that an integer option is strictly positive.
func ValidatePositive(name string, v int) error {
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be > 0, got %d", name, v)
	}
	return nil
}

// ValidateNonNegative checks that an integer option is zero or positive.
func ValidateNonNegative(name string, v int) error {
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must be >= 0, got %d", name, v)
	}
	return nil
}

// ValidateChoice checks that v is one of the allowed values.
func ValidateChoice(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "invalid %s: %s (must be %s)", name, v, quoteJoin(allowed))
}

func quoteJoin(vals []string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = "'" + v + "'"
	}
	switch len(q) {
	case 0:
		return ""
	case 1:
		return q[0]
	}
	return strings.Join(q[:len(q)-1], ", ") + " or " + q[len(q)-1]
}
