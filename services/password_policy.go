package services

import (
	"strings"
	"unicode"
)

// Password requirements
const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes
	MaxPasswordLength = 72
)

// ValidatePassword checks a teacher password:
// - between 8 and 72 bytes
// - at least one letter
// - at least one character that is not a letter
// - not the account email
func ValidatePassword(password, email string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return invalid("password", "must be at most %d bytes", MaxPasswordLength)
	}

	var hasLetter, hasOther bool
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		} else {
			hasOther = true
		}
	}
	if !hasLetter {
		return invalid("password", "must contain at least one letter")
	}
	if !hasOther {
		return invalid("password", "must contain a number, symbol or space")
	}
	if email != "" && strings.EqualFold(strings.TrimSpace(password), email) {
		return invalid("password", "must not be your email address")
	}
	return nil
}
