package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// maxNameLength bounds entity and scene names.
const maxNameLength = 128

// ValidateName validates a scene or entity name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 128 characters
//
// Names are compared byte-for-byte; no normalization is applied.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "name cannot contain whitespace: %q", name)
		}
	}

	return nil
}

// entityNameRegex matches identifiers such as "root", "arm.left" or "hud-2".
var entityNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateEntityName validates an entity name declared in a scene.
// Entity names are also used as node identifiers in DOT output, so they
// are restricted to identifier-like strings.
func ValidateEntityName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if !entityNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid entity name: %q", name)
	}

	return nil
}

// ValidateFormat checks that format is one of allowed, ignoring case.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}

	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}

	return nil
}
