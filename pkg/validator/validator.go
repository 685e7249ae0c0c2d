package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"anoa.com/lostfound/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Same tag gin uses so DTOs are checked identically inside services.
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Struct validates v with its binding tags and returns the first failure as a
// *apperror.ValidationError.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return ToAppError(err)
	}
	return nil
}

// IsEmail reports whether s is shaped like an email address.
func IsEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

// ToAppError converts binding and validation failures into a ValidationError
// carrying the offending field.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return apperror.NewValidation(getFieldName(fe.Field()), getFieldErrorMessage(fe))
	}
	return apperror.NewValidation("", "malformed request body")
}

func getFieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a valid id"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("must be a valid %s", fe.Tag())
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	default:
		return "is invalid"
	}
}

// gin's own validator reports Go field names; map them to the wire names.
func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Kind":             "kind",
		"Name":             "name",
		"Place":            "place",
		"IncidentTime":     "time",
		"Contact":          "contact",
		"Description":      "description",
		"Reward":           "reward",
		"Latitude":         "latitude",
		"Longitude":        "longitude",
		"ImageURL":         "image_url",
		"SecurityQuestion": "security_question",
		"SecurityAnswer":   "security_answer",
		"Response":         "response",
		"Message":          "message",
		"Username":         "username",
		"Email":            "email",
		"Password":         "password",
		"Login":            "login",
		"Bio":              "bio",
		"Phone":            "phone",
		"Type":             "type",
		"Sort":             "sort",
		"Search":           "search",
		"Query":            "q",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
