package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Same shape check the registration form has always used: something@something.tld
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)

func IsValidEmail(email string) bool {
	return len(email) <= MaxEmailLength && emailRe.MatchString(email)
}

// IsValidPassword requires at least MinPasswordLength characters.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

func IsValidUsername(username string) bool {
	u := strings.TrimSpace(username)
	return u != "" && utf8.RuneCountInString(u) <= MaxUsernameLength
}
