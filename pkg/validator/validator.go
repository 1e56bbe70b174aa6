package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Decode errors returned by DecodeAndValidate.
var (
	// ErrInvalidJSON indicates the body is not syntactically valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrFieldType indicates a JSON value of the wrong type for its field.
	ErrFieldType = errors.New("invalid field type")
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notblank: string must contain at least one non-whitespace character.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(f.String()) != ""
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// field name → human-readable message.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required"
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// DecodeAndValidate decodes the JSON request body into T and validates it.
// An empty body decodes as the zero T, so missing fields surface as
// validation errors rather than decode errors. Errors are:
//   - ErrInvalidJSON for malformed bodies
//   - ErrFieldType (wrapped, naming the field) for type mismatches
//   - validator.ValidationErrors for tag failures
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s", ErrFieldType, typeErr.Field)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if err := Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
