// Package validation validates inbound request payloads before they
// reach the ledger or any provider.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ngPhoneRegex = regexp.MustCompile(`^0[789][01]\d{8}$`)
	pinRegex     = regexp.MustCompile(`^\d{4}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ngphone", func(fl validator.FieldLevel) bool {
		return ngPhoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("txnpin", func(fl validator.FieldLevel) bool {
		return pinRegex.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates tagged fields on a request struct.
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.New(formatErrors(verrs))
		}
		return err
	}
	return nil
}

func formatErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "ngphone":
		return fmt.Sprintf("%s must be a valid Nigerian phone number", field)
	case "txnpin":
		return fmt.Sprintf("%s must be a 4-digit pin", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// IsNigerianPhone reports whether v looks like a local mobile number.
func IsNigerianPhone(v string) bool {
	return ngPhoneRegex.MatchString(v)
}

// IsTransactionPin reports whether v is a well-formed 4-digit PIN.
func IsTransactionPin(v string) bool {
	return pinRegex.MatchString(v)
}
