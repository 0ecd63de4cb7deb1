package identity

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// check validates a form and returns the message for its first failing
// field, or "" when the form is valid.
func check(form any) string {
	err := apiclient.Validator().Struct(form)
	if err == nil {
		return ""
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return notify.MsgFillRequired
	}
	return fieldMessage(fields[0])
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return notify.MsgFillRequired
	case "email":
		return notify.MsgInvalidEmail
	case "eqfield":
		return notify.MsgPasswordMismatch
	case "nefield":
		return notify.MsgPasswordUnchanged
	case "oneof":
		return notify.MsgRoleInvalid
	case "min":
		if fe.Field() == "Name" {
			return notify.MsgNameTooShort
		}
		return notify.MsgPasswordTooShort
	}
	return notify.MsgFillRequired
}
