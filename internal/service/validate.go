package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/linkcut/linkcut-client/internal/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errConfirmPhrase = fmt.Errorf("%w: type %q to confirm", errs.ErrValidation, DeleteConfirmPhrase)

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type changePasswordInput struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=8,nefield=Current"`
	Confirm string `validate:"required,eqfield=New"`
}

func validateLogin(email, password string) error {
	return validateStruct(loginInput{Email: email, Password: password})
}

// validateStruct runs tag validation and folds the first failure into the
// ErrValidation sentinel with a field-level message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ferrs validator.ValidationErrors
	if errors.As(err, &ferrs) && len(ferrs) > 0 {
		f := ferrs[0]
		switch f.Tag() {
		case "email":
			return fmt.Errorf("%w: %s must be a valid email address", errs.ErrValidation, f.Field())
		case "min":
			return fmt.Errorf("%w: %s must be at least %s characters", errs.ErrValidation, f.Field(), f.Param())
		case "eqfield":
			return fmt.Errorf("%w: %s does not match %s", errs.ErrValidation, f.Field(), f.Param())
		case "nefield":
			return fmt.Errorf("%w: %s must differ from %s", errs.ErrValidation, f.Field(), f.Param())
		default:
			return fmt.Errorf("%w: %s is required", errs.ErrValidation, f.Field())
		}
	}
	return fmt.Errorf("%w: %v", errs.ErrValidation, err)
}
