// Package validation wraps go-playground/validator with the struct tag rules
// used by commands, form fields and configuration.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator validates structs by tag and by their own Validate method.
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a validator with the custom rules registered
func NewValidator() *Validator {
	v := &Validator{validate: validator.New()}

	// Use yaml, then json tag names in error messages
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.validate.RegisterValidation("attrkey", attrKeyValidator)
	return v
}

// Validate runs the value's own Validate method, if any, then its struct tags.
func (v *Validator) Validate(i interface{}) error {
	if sv, ok := i.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	return v.Struct(i)
}

// Struct validates struct tags only.
func (v *Validator) Struct(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateVar validates a single variable
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError folds validator errors into one validation AppError
// carrying a message per field.
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	appErr := apperrors.NewValidationError("validation failed")
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg := errorMessage(e.Tag(), e.Param())
		field := e.Namespace()
		if field == "" {
			field = e.Field()
		}
		appErr.WithDetail(field, msg)
		msgs = append(msgs, field+": "+msg)
	}
	appErr.Message = "validation failed: " + strings.Join(msgs, "; ")
	return appErr
}

func errorMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "required_if":
		return "is required when " + param
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "attrkey":
		return "must be a non-blank attribute name"
	default:
		return fmt.Sprintf("failed %s validation", tag)
	}
}

// attrKeyValidator accepts names with at least one non-space character and
// no surrounding whitespace.
func attrKeyValidator(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	return key != "" && strings.TrimSpace(key) == key
}

// SelfValidator is implemented by types that can validate themselves
type SelfValidator interface {
	Validate() error
}
