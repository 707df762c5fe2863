// internal/domain/user/entity.go
package user

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/apperr"
)

type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

var (
	ErrNotFound      = apperr.New(apperr.KindNotFound, "user: not found")
	ErrUsernameTaken = apperr.Validation("username", "Username already exists")
	ErrEmailTaken    = apperr.Validation("email", "Email already exists")
)

const (
	MaxUsernameLength = 150
	MaxNameLength     = 150
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// New normalizes and validates a user. The password hash is set separately
// via SetPassword.
func New(id, username, email, firstName, lastName string, now time.Time) (User, error) {
	u := User{
		ID:         strings.TrimSpace(id),
		Username:   strings.TrimSpace(username),
		Email:      NormalizeEmail(email),
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		IsActive:   true,
		DateJoined: now.UTC(),
	}
	if err := u.validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// NormalizeEmail lowercases the domain part only.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at] + strings.ToLower(s[at:])
}

func (u User) validate() error {
	if u.ID == "" {
		return apperr.Validation("id", "id is required")
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(u.FirstName) > MaxNameLength {
		return apperr.Validation("first_name", "Ensure this field has no more than 150 characters.")
	}
	if utf8.RuneCountInString(u.LastName) > MaxNameLength {
		return apperr.Validation("last_name", "Ensure this field has no more than 150 characters.")
	}
	return nil
}

func ValidateUsername(s string) error {
	switch {
	case s == "":
		return apperr.Validation("username", "This field is required.")
	case utf8.RuneCountInString(s) > MaxUsernameLength:
		return apperr.Validation("username", "Ensure this field has no more than 150 characters.")
	case !usernameRe.MatchString(s):
		return apperr.Validation("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

func ValidateEmail(s string) error {
	if s == "" {
		return apperr.Validation("email", "This field is required.")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@"):], ".") {
		return apperr.Validation("email", "Enter a valid email address.")
	}
	return nil
}

// Patch carries optional profile updates.
type Patch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// Apply returns a copy of u with the patch applied and validated.
func (u User) Apply(p Patch) (User, error) {
	if p.Username != nil {
		u.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if err := u.validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// UsersTableDDL defines the users table.
const UsersTableDDL = `
CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  username      VARCHAR(150) NOT NULL UNIQUE,
  email         VARCHAR(254) NOT NULL UNIQUE,
  first_name    VARCHAR(150) NOT NULL DEFAULT '',
  last_name     VARCHAR(150) NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  is_staff      BOOLEAN NOT NULL DEFAULT FALSE,
  is_active     BOOLEAN NOT NULL DEFAULT TRUE,
  date_joined   TIMESTAMPTZ NOT NULL,
  last_login    TIMESTAMPTZ
);
`
