package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// EmailMaxLen matches the users.email column width.
	EmailMaxLen    = 254
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 8
	// PasswordMaxLen is bcrypt's input limit in bytes.
	PasswordMaxLen = 72
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// NormalizeEmail returns the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks email against the fixed rule set and returns its
// normalized form. Rules are evaluated in order and the first failure wins.
func ValidateEmail(email string) (string, error) {
	if len(email) > EmailMaxLen {
		return "", invalid("email", "email must be at most 254 characters")
	}
	if strings.Count(email, "@") != 1 {
		return "", invalid("email", "email must contain exactly one @")
	}
	local, domainPart, _ := strings.Cut(email, "@")

	switch {
	case local == "":
		return "", invalid("email", "email local part must not be empty")
	case strings.HasPrefix(local, "."):
		return "", invalid("email", "email local part must not start with a dot")
	case strings.HasSuffix(local, "."):
		return "", invalid("email", "email local part must not end with a dot")
	case strings.Contains(local, ".."):
		return "", invalid("email", "email local part must not contain consecutive dots")
	}

	switch {
	case domainPart == "":
		return "", invalid("email", "email domain must not be empty")
	case strings.HasPrefix(domainPart, ".") || strings.HasPrefix(domainPart, "-"):
		return "", invalid("email", "email domain must not start with a dot or hyphen")
	case strings.HasSuffix(domainPart, "."):
		return "", invalid("email", "email domain must not end with a dot")
	case strings.Contains(domainPart, ".."):
		return "", invalid("email", "email domain must not contain consecutive dots")
	case strings.Contains(domainPart, ","):
		return "", invalid("email", "email domain must not contain commas")
	}

	if strings.Contains(email, " ") {
		return "", invalid("email", "email must not contain spaces")
	}

	if !strings.Contains(domainPart, ".") {
		return "", invalid("email", "email domain must contain a dot")
	}
	labels := strings.Split(domainPart, ".")
	for _, label := range labels {
		if label == "" {
			return "", invalid("email", "email domain must not contain empty labels")
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", invalid("email", "email domain labels must not start or end with a hyphen")
		}
	}
	if len(labels[len(labels)-1]) < 2 {
		return "", invalid("email", "email top-level domain must be at least 2 characters")
	}

	if !emailPattern.MatchString(email) {
		return "", invalid("email", "email contains invalid characters")
	}

	return NormalizeEmail(email), nil
}

// ValidateUsername checks length, charset and underscore placement.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return invalid("username", "username must be between 3 and 20 characters")
	}
	if !usernamePattern.MatchString(username) {
		return invalid("username", "username may only contain letters, digits and underscores")
	}
	if strings.Contains(username, "__") {
		return invalid("username", "username must not contain consecutive underscores")
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return invalid("username", "username must not start or end with an underscore")
	}
	return nil
}

// ValidatePassword enforces length bounds and character-class requirements.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLen {
		return invalid("password", "password must be at least 8 characters")
	}
	if len(password) > PasswordMaxLen {
		return invalid("password", "password must be at most 72 bytes")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return invalid("password", "password must contain an uppercase letter")
	case !lower:
		return invalid("password", "password must contain a lowercase letter")
	case !digit:
		return invalid("password", "password must contain a digit")
	}
	return nil
}

// Registration is the raw input of a sign-up request.
type Registration struct {
	Email    string
	Username string
	Password string
}

// ValidateRegistration runs the email, username and password checks in that
// order and returns the normalized email. It stops at the first failure.
func ValidateRegistration(r Registration) (string, error) {
	email, err := ValidateEmail(r.Email)
	if err != nil {
		return "", err
	}
	if err := ValidateUsername(r.Username); err != nil {
		return "", err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return "", err
	}
	return email, nil
}
