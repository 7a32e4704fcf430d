// Package validation checks model and material identifiers and request
// structs before any file in the pack is touched.
//
// Names follow the "snake_case" rule: non-empty, the first character is a
// lowercase ASCII letter or digit, and every other character is a lowercase
// ASCII letter, digit or underscore.
//
// # Usage Example
//
//	v := validation.New()
//	result := v.ValidateStruct(req)
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"evalgo.org/packsmith/internal/apperr"
)

// SnakeCaseTag is the struct tag registered for the snake_case rule.
const SnakeCaseTag = "snake_case"

// IsSnakeCase reports whether s matches ^[a-z0-9][a-z0-9_]*$.
func IsSnakeCase(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '_' && i > 0:
		default:
			return false
		}
	}
	return true
}

// RequireSnakeCase returns a validation error carrying s when it is not snake_case.
func RequireSnakeCase(s string) error {
	if !IsSnakeCase(s) {
		return apperr.Validation("name must be snake_case (a-z, 0-9, _; not starting with _)", s)
	}
	return nil
}

// Validator wraps go-playground/validator with the pack's custom rules.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// New creates a Validator with the snake_case tag registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(SnakeCaseTag, func(fl validator.FieldLevel) bool { //nolint:errcheck
		return IsSnakeCase(fl.Field().String())
	})
	return &Validator{structValidator: v}
}

// ValidateStruct runs tag validation on s and collects field errors.
func (v *Validator) ValidateStruct(s interface{}) *ValidationResult {
	err := v.structValidator.Struct(s)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "request", Message: err.Error()}},
		}
	}

	errs := make([]ValidationError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		errs = append(errs, ValidationError{
			Field:   fieldName(fe),
			Message: formatValidationError(fe),
			Value:   fe.Value(),
		})
	}

	return &ValidationResult{Valid: false, Errors: errs}
}

// Err converts a failed result into an apperr validation error.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s %s", e.Field, e.Message))
	}
	e := apperr.New(apperr.KindValidation, "invalid request", strings.Join(msgs, "; "))
	if len(r.Errors) > 0 {
		e.Context = map[string]interface{}{"value": r.Errors[0].Value}
	}
	return e
}

// fieldName turns "AddModelRequest.Materials[1]" into "materials[1]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns[:1]) + ns[1:]
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case SnakeCaseTag:
		return fmt.Sprintf("must be snake_case, got %q", fe.Value())
	case "url", "http_url":
		return "must be an http(s) URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
