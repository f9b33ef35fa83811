package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofrs/uuid"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordLen = 72

type Credentials struct {
	UserID       uuid.UUID
	PasswordHash string // bcrypt hash
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Mail      string    `json:"mail"`
	CreatedAt time.Time `json:"created_at"`
}

// UniqueUser is the form submitted on registration and login.
type UniqueUser struct {
	Mail     string `form:"mail" json:"mail"`
	Password string `form:"password" json:"-"`
}

// Normalize trims and lower-cases the mail so lookups are case-insensitive.
func (u UniqueUser) Normalize() UniqueUser {
	u.Mail = strings.ToLower(strings.TrimSpace(u.Mail))
	return u
}

// Validate will run the registration rules.
func (u UniqueUser) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Mail, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&u.Password, validation.Required, validation.Length(8, maxPasswordLen)),
	)
}

// ValidateCredentials only checks that both fields are present; password
// policy is not re-applied at login.
func (u UniqueUser) ValidateCredentials() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Mail, validation.Required),
		validation.Field(&u.Password, validation.Required),
	)
}
