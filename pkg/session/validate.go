package session

import (
	"fmt"
	"strings"
)

// Credential policy. Checked before any persistence is touched.
const (
	MinUsernameLength = 5
	MaxUsernameLength = 20
	MinPasswordLength = 8
	MaxPasswordLength = 32
)

const passwordSpecials = "!@#$%^&*-"

// ValidateCredentials enforces the username and password policy. The wrapped
// message names the offending field but not the rule that failed.
func ValidateCredentials(username, password string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("username: %w", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("password: %w", ErrInvalidInput)
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return fmt.Errorf("password: %w", ErrInvalidInput)
	}
	return nil
}
