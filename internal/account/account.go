// Package account is the user directory: volunteer and administrator
// accounts, their credentials and the roster operations on them.
package account

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cruzverde/attendance/internal/apperr"
)

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVolunteer
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Account is a registered person. PasswordHash never leaves the process.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner is the subset of an account joined onto attendance listings and reports.
type Owner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// Owner projects the account for display next to its records.
func (a Account) Owner() Owner {
	return Owner{ID: a.ID, Name: a.Name, Email: a.Email, Active: a.Active}
}

var (
	ErrNotFound           = apperr.New(apperr.KindNotFound, "ACCOUNT_NOT_FOUND", "volunteer not found")
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "EMAIL_TAKEN", "email is already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "INVALID_CREDENTIALS", "invalid credentials")
	ErrDisabled           = apperr.New(apperr.KindForbidden, "ACCOUNT_DISABLED", "your account has been disabled")
	ErrCannotDisableAdmin = apperr.New(apperr.KindConflict, "CANNOT_DISABLE_ADMIN", "administrators cannot be disabled")
)

var validate = validator.New()

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration is the input of a self sign-up.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Normalize trims the name and normalizes the email.
func (r Registration) Normalize() Registration {
	return Registration{
		Name:     strings.TrimSpace(r.Name),
		Email:    NormalizeEmail(r.Email),
		Password: r.Password,
	}
}

// Validate checks a normalized registration.
func (r Registration) Validate() error {
	if r.Name == "" {
		return apperr.Validation("name is required")
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperr.Validation("email is invalid")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}
