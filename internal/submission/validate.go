package submission

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	e164Pattern  = regexp.MustCompile(`^\+\d{8,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Failing fields are reported by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("fullname", validateFullName)
	v.RegisterValidation("emailaddr", validateEmail)
	v.RegisterValidation("e164", validateE164)

	return v
}

func validateFullName(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) >= 2
}

func validateEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

func validateE164(fl validator.FieldLevel) bool {
	return e164Pattern.MatchString(fl.Field().String())
}

// Validate checks every field rule independently and returns the full set of
// failing field names; an empty slice means the submission is valid. Absent
// fields are validated as empty strings. No I/O.
func (s *Submission) Validate() []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"submission"}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
