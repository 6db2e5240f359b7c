// Package suggestion carries free-text feedback from learners to the team:
// payload validation, an HTTP client for the suggestions API, the API server
// itself and the mailer it forwards to.
package suggestion

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Categories offered to learners. Other values are accepted if they pass
// the length rules.
var Categories = []string{
	"Feature Request",
	"Bug Report",
	"Course Suggestion",
	"General Feedback",
	"Other",
}

// Suggestion is one piece of learner feedback.
type Suggestion struct {
	Category string `json:"category" validate:"required,min=2,max=100"`
	Message  string `json:"message" validate:"required,min=10,max=5000"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// Normalize trims surrounding whitespace from every field.
func (s Suggestion) Normalize() Suggestion {
	s.Category = strings.TrimSpace(s.Category)
	s.Message = strings.TrimSpace(s.Message)
	s.Email = strings.TrimSpace(s.Email)
	return s
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid suggestion: " + strings.Join(parts, "; ")
}

var suggestionValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Validate checks the length and format rules. It returns a
// *ValidationError describing every failing field.
func (s Suggestion) Validate() error {
	err := suggestionValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = fieldMessage(fe)
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
