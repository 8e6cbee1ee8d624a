// Package inputval validates request payloads and query parameters.
//
// Payload structs carry go-playground/validator tags plus an optional
// `label` tag used in messages:
//
//	Title string `json:"title" validate:"required,max=200" label:"Title"`
//
// Every enum in models.Enums is registered as its own tag (goal_status,
// expense_category, ...) so create, update and filter parsing share one
// allow-list.
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsValidClock(fl.Field().String())
	})
	for tag, allowed := range models.Enums {
		allowed := allowed
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			for _, a := range allowed {
				if s == a {
					return true
				}
			}
			return false
		})
	}
	return v
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields maps field name to its first message.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Err converts a failed Result into a validation error, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apierr.Invalid(r.First(), r.Fields())
}

// Validate runs the struct's validate tags.
func Validate(input any) *Result {
	res := &Result{}
	err := validate.Struct(input)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	t := reflect.TypeOf(input)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(fe, label(t, fe)),
		})
	}
	return res
}

// Check validates input and returns a validation *apierr.Error on failure.
func Check(input any) error {
	return Validate(input).Err()
}

// DecodeJSON reads a JSON body into dst. An empty body or malformed JSON is
// a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apierr.Validation("request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validation("request body is empty")
		}
		return apierr.Validationf("malformed JSON body: %v", err)
	}
	return nil
}

func label(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return fe.Field()
}

func message(fe validator.FieldError, name string) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required.", name)
	case "email":
		return "A valid email address is required."
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", name, fe.Param())
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", name, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "objectid":
		return fmt.Sprintf("%s must be a valid id.", name)
	case "httpurl":
		return fmt.Sprintf("%s must be a valid http(s) URL.", name)
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format.", name)
	}
	if allowed, ok := models.Enums[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s.", name, strings.Join(allowed, ", "))
	}
	return fmt.Sprintf("%s is invalid.", name)
}
