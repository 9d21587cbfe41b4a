package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs struct tag validation and reports the first failing field
// as an ErrValidation.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationf("%v", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return validationf("%s is required", fe.Field())
	case "email":
		return validationf("%s must be a valid email address", fe.Field())
	case "min":
		return validationf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return validationf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return validationf("%s is invalid", fe.Field())
	}
}
