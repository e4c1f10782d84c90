package api

import (
	"alcyxob/sets-tracker/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the "details" list of a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules to gin's validator:
// workout_type (catalog membership) and iso_timestamp (RFC 3339).
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("WARN: gin validator engine is not go-playground/validator; custom rules not registered")
			return
		}
		// Report JSON names rather than Go field names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("workout_type", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || domain.IsKnownWorkoutType(domain.WorkoutType(value))
		})
		_ = v.RegisterValidation("iso_timestamp", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true
			}
			_, err := domain.ParseISO(value)
			return err == nil
		})
	})
}

// validationDetails turns a bind or validation error into field errors.
// The boolean is false when err is not a client payload problem.
func validationDetails(err error) ([]FieldError, bool) {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{Field: fieldPath(fe), Message: ruleMessage(fe)})
		}
		return details, true
	case errors.As(err, &typeErr):
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type.String(), typeErr.Value),
		}}, true
	case errors.As(err, &syntaxErr):
		return []FieldError{{Message: "malformed JSON: " + syntaxErr.Error()}}, true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []FieldError{{Message: "request body is empty or truncated"}}, true
	}
	return nil, false
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "Struct.field.sub"; drop the struct name.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		return "must be >= " + fe.Param()
	case "workout_type":
		return fmt.Sprintf("%v is not a known workout type", fe.Value())
	case "iso_timestamp":
		return "must be an ISO 8601 timestamp"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
