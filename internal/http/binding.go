package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hero-service/internal/hero"
)

func init() {
	// Report JSON field names instead of Go struct field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindError turns a gin binding failure into per-field problems.
func bindError(err error) *hero.ValidationError {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		fields := make([]hero.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, hero.FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
		}
		return &hero.ValidationError{Fields: fields}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &hero.ValidationError{Fields: []hero.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("must be of type %s, got %s", typeErr.Type, typeErr.Value),
		}}}
	case errors.As(err, &synErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &hero.ValidationError{Fields: []hero.FieldError{{Field: "body", Message: "is not valid JSON"}}}
	case errors.Is(err, io.EOF):
		return &hero.ValidationError{Fields: []hero.FieldError{{Field: "body", Message: "is required"}}}
	default:
		return &hero.ValidationError{Fields: []hero.FieldError{{Field: "body", Message: err.Error()}}}
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
