package onboard

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vimgreet/vimgreet/internal/validate"
)

// UserForm carries the account fields through validation. Field order
// matters: the first failing field is the one surfaced to the user.
type UserForm struct {
	Username string `validate:"required,unixname,max=32"`
	Password string `validate:"required"`
	Confirm  string `validate:"eqfield=Password"`
}

// validateUserForm checks the account form and surfaces the first problem in
// the message panel.
func (m *Model) validateUserForm() bool {
	form := UserForm{
		Username: m.username.Content(),
		Password: m.password.Content(),
		Confirm:  m.passwordConfirm.Content(),
	}

	if err := validate.Struct(form); err != nil {
		m.setError(userFormMessage(err))
		return false
	}

	// The minimum length comes from configuration, so it is checked apart
	// from the struct tags.
	minLen := m.cfg.User.MinPasswordLength
	if err := validate.Var(form.Password, fmt.Sprintf("min=%d", minLen)); err != nil {
		m.setError(fmt.Sprintf("Password must be at least %d characters", minLen))
		return false
	}

	return true
}

// userFormMessage maps the first validation failure to its user-facing text.
func userFormMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		switch fe.Tag() {
		case "required":
			return "Username is required"
		case "max":
			return "Username must be 32 characters or less"
		default:
			return "Username can only contain letters, numbers, underscore, and dash"
		}
	case "Password":
		return "Password is required"
	case "Confirm":
		return "Passwords do not match"
	}
	return "Invalid input"
}
