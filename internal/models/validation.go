package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error on a single field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Fields groups messages by field name, the shape returned to API clients.
func (ve ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string, len(ve))
	for _, err := range ve {
		fields[err.Field] = append(fields[err.Field], err.Message)
	}
	return fields
}

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, err := range ve {
		parts[i] = err.Field + ": " + err.Message
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// fieldMessages overrides the generic message for a (field, tag) pair.
var fieldMessages = map[string]map[string]string{
	"bio": {
		"required": "Bio cannot be empty.",
		"notblank": "Bio cannot be empty.",
		"min":      "Bio must be at least 10 characters long.",
	},
	"contacts": {
		"required": "Contact information cannot be empty.",
		"notblank": "Contact information cannot be empty.",
	},
}

func validateStruct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "non_field_errors", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	if msgs, ok := fieldMessages[fe.Field()]; ok {
		if msg, ok := msgs[fe.Tag()]; ok {
			return msg
		}
	}

	switch fe.Tag() {
	case "required", "notblank":
		return "This field may not be blank."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
