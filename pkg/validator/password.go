package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters in a password
const MinPasswordLength = 8

var (
	// ErrEmptyPassword indicates the password is empty
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrPasswordTooShort indicates the password has fewer than MinPasswordLength characters
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordNoSymbol indicates the password has no punctuation or symbol
	ErrPasswordNoSymbol = errors.New("password must contain at least one punctuation mark")

	// ErrInvalidEmail indicates a malformed email address
	ErrInvalidEmail = errors.New("invalid email address")
)

// PasswordValidator checks password strength rules
type PasswordValidator struct{}

// NewPasswordValidator creates a new password validator instance
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{}
}

// Validate checks length (in characters, not bytes) and requires at
// least one rune that is neither a word character nor whitespace.
func (v *PasswordValidator) Validate(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if !v.HasSymbol(password) {
		return ErrPasswordNoSymbol
	}

	return nil
}

// HasSymbol reports whether s contains a rune outside letters, digits,
// underscore and whitespace. Letters include non-ASCII ones such as ş and ğ.
func (v *PasswordValidator) HasSymbol(s string) bool {
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
			continue
		}
		return true
	}
	return false
}

// IsValid is a convenience method that returns true if password passes all rules
func (v *PasswordValidator) IsValid(password string) bool {
	return v.Validate(password) == nil
}

// NormalizeEmail trims and lowercases an email address and checks its syntax
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
