package user

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ReservedUsername may not be registered: it would shadow the /users/me route.
const ReservedUsername = "me"

var usernameSymbols = regexp.MustCompile(`^[0-9A-Za-z.@+_-]+$`)

// ValidateUsername checks the allow-listed character class, the reserved
// name and the configured length bound.
func ValidateUsername(value string, maxLength int) error {
	if value == "" {
		return fmt.Errorf("username is required")
	}
	if len(value) > maxLength {
		return fmt.Errorf("username must be at most %d characters", maxLength)
	}
	if value == ReservedUsername {
		return fmt.Errorf("using %q as a username is forbidden", ReservedUsername)
	}
	if !usernameSymbols.MatchString(value) {
		var invalid []string
		for _, r := range value {
			if !usernameSymbols.MatchString(string(r)) {
				invalid = append(invalid, string(r))
			}
		}
		return fmt.Errorf("username contains invalid characters: %s", strings.Join(invalid, " "))
	}
	return nil
}

// ValidateEmail checks syntax and the configured length bound. Addresses
// with display names ("Bob <bob@x.com>") are rejected.
func ValidateEmail(value string, maxLength int) error {
	if value == "" {
		return fmt.Errorf("email is required")
	}
	if len(value) > maxLength {
		return fmt.Errorf("email must be at most %d characters", maxLength)
	}
	parsed, err := mail.ParseAddress(value)
	if err != nil || parsed.Address != value {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}
