package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var dniPattern = regexp.MustCompile(`^\d{8}$`)

// Messages maps "field.tag" (json field name) to the message shown to users.
type Messages map[string]string

// Validator wraps a validator/v10 instance with the clinic's custom rules.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("dni", validateDNI); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// IsDNI reports whether s is an 8 digit national id.
func IsDNI(s string) bool {
	return dniPattern.MatchString(s)
}

func validateDNI(fl validator.FieldLevel) bool {
	return IsDNI(fl.Field().String())
}

// Check validates obj and converts the first failure into a 400 AppError.
// Missing required fields always report fallback; other failures use the
// message registered for "field.tag", or fallback when none is.
func (v *Validator) Check(obj interface{}, fallback string, messages Messages) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.BadRequest(fallback, err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return apperrors.BadRequest(fallback, err)
		}
	}

	first := fieldErrs[0]
	if msg, ok := messages[first.Field()+"."+first.Tag()]; ok {
		return apperrors.BadRequest(msg, err)
	}
	return apperrors.BadRequest(fallback, err)
}
