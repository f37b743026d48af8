// Package validation binds request bodies into typed inputs and turns
// binding failures into per-field apperr validation errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlibelula/movie-api/internal/apperr"
)

const unknownFieldPrefix = "json: unknown field "

var setupOnce sync.Once

// Setup makes gin reject unknown JSON fields and report json tag names
// in validation errors. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// BindJSON decodes the request body into dst and validates it. An empty
// body is validated as an empty object so missing required fields are
// reported individually. When the body is valid JSON but some fields have
// the wrong type or are not allowed, every field is still checked and all
// messages are returned together.
func BindJSON(c *gin.Context, dst any) error {
	Setup()

	err := c.ShouldBindBodyWith(dst, binding.JSON)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		if err = binding.Validator.ValidateStruct(dst); err == nil {
			return nil
		}
		return Translate(err)
	}
	if isFieldError(err) {
		if body, ok := c.Get(gin.BodyBytesKey); ok {
			if b, ok := body.([]byte); ok {
				return bindFields(b, dst)
			}
		}
	}
	return Translate(err)
}

func isFieldError(err error) bool {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return te.Field != ""
	}
	return strings.HasPrefix(err.Error(), unknownFieldPrefix)
}

// bindFields decodes body one top-level field at a time into the struct
// dst points to, then runs the validator and merges its messages for the
// fields that decoded.
func bindFields(body []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apperr.FieldError("body", "The request body must be a JSON object.")
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return apperr.FieldError("body", "The request body must be a JSON object.")
	}
	v = v.Elem()
	v.Set(reflect.Zero(v.Type()))

	known := make(map[string]int, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonFieldName(f); name != "" {
			known[name] = i
		}
	}

	fields := map[string][]string{}
	for key, msg := range raw {
		i, ok := known[key]
		if !ok {
			fields[key] = []string{fmt.Sprintf("The %s field is not allowed.", label(key))}
			continue
		}
		fv := v.Field(i)
		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(msg, ptr.Interface()); err != nil {
			fields[key] = []string{fmt.Sprintf("The %s field must be %s.", label(key), typeName(fv.Type()))}
			continue
		}
		fv.Set(ptr.Elem())
	}

	var ve validator.ValidationErrors
	if err := binding.Validator.ValidateStruct(dst); errors.As(err, &ve) {
		for _, fe := range ve {
			if _, failed := fields[fe.Field()]; failed {
				continue
			}
			fields[fe.Field()] = []string{message(fe)}
		}
	}
	return apperr.Validation(fields)
}

// Translate converts a binding or validator error into an apperr
// validation error.
func Translate(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string][]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = append(fields[fe.Field()], message(fe))
		}
		return apperr.Validation(fields)
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		if field == "" {
			return apperr.FieldError("body", "The request body must be a JSON object.")
		}
		return apperr.FieldError(field, fmt.Sprintf("The %s field must be %s.", label(field), typeName(te.Type)))
	}

	if msg := err.Error(); strings.HasPrefix(msg, unknownFieldPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownFieldPrefix), `"`)
		return apperr.FieldError(field, fmt.Sprintf("The %s field is not allowed.", label(field)))
	}

	return apperr.FieldError("body", "The request body must be valid JSON.")
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		if fe.Param() == "1" {
			return fmt.Sprintf("The %s field must not be empty.", name)
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "datetime":
		return fmt.Sprintf("The %s field must be a valid date.", name)
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", name, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

// label renders release_date as "release date".
func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func typeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Bool:
		return "true or false"
	default:
		return "valid"
	}
}
