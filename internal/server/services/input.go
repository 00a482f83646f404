package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

// notBlank rejects strings that are empty after trimming.
var notBlank = validation.By(func(v interface{}) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// passwordFits rejects passwords longer than bcrypt accepts. The limit is in
// bytes, not characters.
var passwordFits = validation.By(func(v interface{}) error {
	if s, _ := v.(string); len(s) > auth.MaxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes long", auth.MaxPasswordBytes)
	}
	return nil
})

// RegisterInput is the registration form. AvatarPath and CoverImagePath are
// locally staged files.
type RegisterInput struct {
	FullName       string `json:"fullName"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	AvatarPath     string `json:"-"`
	CoverImagePath string `json:"-"`
}

func (r *RegisterInput) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Username = models.NormalizeIdentifier(r.Username)
	r.Email = models.NormalizeIdentifier(r.Email)
}

// Validate checks that all text fields are present. The password is checked
// trimmed but hashed as given.
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, notBlank),
		validation.Field(&r.Username, validation.Required, notBlank),
		validation.Field(&r.Email, validation.Required, notBlank),
		validation.Field(&r.Password, validation.Required, notBlank, passwordFits),
	)
}

type LoginInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r *LoginInput) normalize() {
	r.Username = models.NormalizeIdentifier(r.Username)
	r.Email = models.NormalizeIdentifier(r.Email)
}

func (r LoginInput) Validate() error {
	if r.Username == "" && r.Email == "" {
		return errors.New("username or email is required")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
	)
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

func (r ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, notBlank, passwordFits),
	)
}
