package services

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"churchsite/internal/domain"
)

var fieldValidator = validator.New()

// required trims *s in place and records a field error when nothing is left.
func required(verr *domain.ValidationError, field string, s *string) {
	*s = strings.TrimSpace(*s)
	if *s == "" {
		verr.Add(field, "is required")
	}
}

// validEmail records a field error when email is set but malformed.
func validEmail(verr *domain.ValidationError, field, email string) {
	if email != "" && fieldValidator.Var(email, "email") != nil {
		verr.Add(field, "must be a valid email address")
	}
}
