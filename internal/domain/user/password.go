package user

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain/apperr"
)

const MinPasswordLength = 8

var (
	ErrPasswordMismatch = apperr.Validation("password", "Passwords don't match")
	ErrWrongPassword    = apperr.Validation("old_password", "Old password is incorrect")
)

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "11111111": {},
	"abc12345": {}, "sunshine": {}, "princess": {}, "football": {}, "baseball": {},
	"welcome1": {}, "admin123": {}, "letmein1": {}, "trustno1": {}, "passw0rd": {},
}

// ValidatePassword applies the password policy. field names the input the
// error is reported against (password or new_password).
func ValidatePassword(field, password, username, email string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Validation(field, "This password is too short. It must contain at least 8 characters.")
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return apperr.Validation(field, "This password is too common.")
	}
	if isAllDigits(password) {
		return apperr.Validation(field, "This password is entirely numeric.")
	}
	if similarTo(lower, username) || similarTo(lower, emailLocalPart(email)) {
		return apperr.Validation(field, "The password is too similar to the user attributes.")
	}
	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

// similarTo is a containment check in both directions on lowercase values.
func similarTo(lowerPassword, attr string) bool {
	attr = strings.ToLower(strings.TrimSpace(attr))
	if utf8.RuneCountInString(attr) < 3 {
		return false
	}
	return strings.Contains(lowerPassword, attr) || strings.Contains(attr, lowerPassword)
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(h)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
