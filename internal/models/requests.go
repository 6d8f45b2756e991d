package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"notblank"`
	Password        string `json:"password" validate:"notblank"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// DraftRules and StoryRules are the validation views of StoryFields.
type DraftRules struct {
	Title string `validate:"notblank"`
}

type StoryRules struct {
	Title    string `validate:"notblank"`
	Content  string `validate:"notblank"`
	Category string `validate:"category"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

type LanguageRequest struct {
	Language string `json:"language" validate:"oneof=ar en"`
}

type AudioUpload struct {
	URL       string        `json:"url"`
	Size      int64         `json:"size"`
	SizeHuman string        `json:"sizeHuman"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated"`
}

// NewValidator returns a validator knowing the "notblank" and "category" tags.
func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return IsCategory(fl.Field().String())
	})

	return v
}
