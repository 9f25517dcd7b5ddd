// Package validation wraps go-playground/validator with the expense rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

// New builds a validator that reports json field names and knows the expense_category tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("expense_category", func(fl validator.FieldLevel) bool {
		return entity.IsValidCategory(fl.Field().String())
	})
	return v
}

// Struct validates s and maps the first failure to a domain.ErrInvalidInput error
// with a readable message.
func Struct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	e := errs[0]
	field := humanField(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	case "expense_category":
		return fmt.Errorf("%w: %s must be one of %s", domain.ErrInvalidInput, field, strings.Join(entity.Categories, ", "))
	case "email":
		return fmt.Errorf("%w: %s must be a valid email", domain.ErrInvalidInput, field)
	case "min":
		return fmt.Errorf("%w: %s must have at least %s characters", domain.ErrInvalidInput, field, e.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", domain.ErrInvalidInput, field)
	}
}

func humanField(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
