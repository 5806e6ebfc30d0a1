package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Error carries one human readable message per failing field, in struct order.
type Error struct {
	Fields   []string
	Messages map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, e.Messages[f])
	}
	return strings.Join(parts, "; ")
}

// New builds a single field error for checks that live outside struct tags.
func New(field, message string) *Error {
	return &Error{Fields: []string{field}, Messages: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s and translates the failures into *Error.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Messages: make(map[string]string, len(verrs))}
	labels := labelsOf(s)
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Messages[field]; seen {
			continue
		}
		label, ok := labels[fe.StructField()]
		if !ok {
			label = fe.StructField()
		}
		out.Fields = append(out.Fields, field)
		out.Messages[field] = message(fe, label)
	}
	return out
}

func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be less than %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Invalid email format"
	case "eqfield":
		return "Passwords don't match"
	case "username":
		return fmt.Sprintf("%s can only contain letters, numbers, hyphens, and underscores", label)
	case "oneof":
		return fmt.Sprintf("Invalid %s selection", strings.ToLower(label))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// labelsOf reads the `label` tag of every top-level field of s.
func labelsOf(s interface{}) map[string]string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	labels := make(map[string]string)
	if t.Kind() != reflect.Struct {
		return labels
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if l := f.Tag.Get("label"); l != "" {
			labels[f.Name] = l
		}
	}
	return labels
}
