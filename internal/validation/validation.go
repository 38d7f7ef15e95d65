// Package validation wires the project's field rules into gin's binding
// engine and turns binding failures into the ordered, human-readable message
// list surfaced to clients.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	emailRX       = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	countryCodeRX = regexp.MustCompile(`^\+[0-9]{1,3}$`)
	phoneDigitsRX = regexp.MustCompile(`^[0-9]{4,14}$`)
)

// Register installs the custom rules and json-tag field naming on gin's
// binding validator. Call once at startup, before any request is served.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]func(fl validator.FieldLevel) bool{
		"emailpattern": func(fl validator.FieldLevel) bool {
			return emailRX.MatchString(fl.Field().String())
		},
		"countrycode": func(fl validator.FieldLevel) bool {
			return countryCodeRX.MatchString(fl.Field().String())
		},
		"phonedigits": func(fl validator.FieldLevel) bool {
			return phoneDigitsRX.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validation: register %q: %w", tag, err)
		}
	}
	return nil
}

// Messages converts a binding error into the ordered per-field message list.
// Field order follows the request struct declaration order, so callers can
// surface all failures together.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return msgs
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := fieldPath(typeErr.Field)
		if field == "" {
			field = "request body"
		}
		return []string{fmt.Sprintf("%s must be of type %s", field, typeErr.Type)}
	}
	if errors.Is(err, io.EOF) {
		return []string{"request body is required"}
	}
	return []string{"request body must be valid JSON"}
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email", "emailpattern":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "countrycode":
		return field + " must be a + followed by 1 to 3 digits"
	case "phonedigits":
		return field + " must be 4 to 14 digits"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldPath strips the request type from a namespace such as
// "CreateUserRequest.phone.countryCode".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 && ns[:i] != "" && strings.ToUpper(ns[:1]) == ns[:1] {
		return ns[i+1:]
	}
	return ns
}
