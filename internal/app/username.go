package app

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxUsernameLength is counted in runes.
const MaxUsernameLength = 20

// ValidateUsername rejects blank names and names longer than MaxUsernameLength.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if n := utf8.RuneCountInString(name); n > MaxUsernameLength {
		return fmt.Errorf("%w: %d characters, max %d", ErrInvalidUsername, n, MaxUsernameLength)
	}
	return nil
}
