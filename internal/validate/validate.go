package validate

// This package adds struct and field validation as a thin wrapper around the
// go-playground/validator package.
//
// e.g. internal/onboard/form.go
//   type UserForm struct {
//       Username string `validate:"required,max=32,unixname"`
//       Password string `validate:"required"`
//   }
//
// The custom "unixname" tag restricts values to letters, digits, underscore,
// and dash, matching what useradd accepts.

import (
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a shared validator for the application.
// It is initialized once and reused to avoid repeated allocations.
//
//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		_ = validatorInst.RegisterValidation("unixname", isUnixName)
	})
	return validatorInst
}

func isUnixName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
