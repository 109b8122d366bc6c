package entity

import "github.com/go-playground/validator/v10"

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

func ValidateStruct(s any) error {
	return validate.Struct(s)
}
