package validation

import (
	"fmt"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var pincodeRE = regexp.MustCompile(`^\d{6}$`)

// New returns a configured validator with the storefront's custom rules
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	// shipping pincodes are six digits
	_ = v.RegisterValidation("pincode", func(fl validatorv10.FieldLevel) bool {
		return pincodeRE.MatchString(fl.Field().String())
	})

	return v
}

// Message flattens a validation error into a single user-facing sentence.
// Internal error detail is never exposed beyond field names and rule tags.
func Message(err error) string {
	verrs, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return "invalid request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", strings.ToLower(fe.Field())))
		case "pincode":
			parts = append(parts, fmt.Sprintf("%s must be a 6-digit pin code", strings.ToLower(fe.Field())))
		case "min", "max", "gte", "lte":
			parts = append(parts, fmt.Sprintf("%s is out of range", strings.ToLower(fe.Field())))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}
