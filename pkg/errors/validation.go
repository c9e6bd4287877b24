package errors

import (
	"strings"
	"unicode"
)

const maxKeyLength = 256

// ValidateKey validates a snapshot key before it reaches a storage backend.
// File backends hash keys, but redis uses them verbatim, so the rules are
// conservative:
//   - No empty keys
//   - No control characters or whitespace
//   - No path traversal sequences (..)
//   - Maximum length of 256 bytes
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidKey, "key contains invalid characters")
		}
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "key cannot contain path traversal sequences (..)")
	}
	return nil
}

// ValidateVariable validates a script variable name (the part after "$").
// Names are letters, digits and underscores, starting with a letter or
// underscore. Unicode letters are allowed, so "ν1" is valid.
func ValidateVariable(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScript, "variable name cannot be empty")
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case unicode.IsDigit(r) && i > 0:
		default:
			return New(ErrCodeInvalidScript, "invalid variable name: %q", name)
		}
	}
	return nil
}
