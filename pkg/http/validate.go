package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
}

// ValidationErrors is returned when a request fails binding or validation.
type ValidationErrors []ValidationError

// Error returns the first message, which is what legacy clients display.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid request"
	}
	return v[0].Message
}

// BindErrorMessage is used when the body or query cannot be decoded.
var BindErrorMessage = "Input tidak valid: jumlah ternak harus berupa angka"

// ReadAndValidateRequest fills defaults, binds and validates req.
// Defaults go in first so an explicit zero from the client is validated
// rather than replaced. A field's `msg` tag replaces the generated message
// for any rule it fails.
func ReadAndValidateRequest(c echo.Context, req interface{}) error {
	if err := defaults.Set(req); err != nil {
		return ValidationErrors{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}

	if err := c.Bind(req); err != nil {
		return ValidationErrors{{Code: "ERR_BIND", Message: BindErrorMessage}}
	}

	return ValidateStruct(c, req)
}

// ValidateStruct validates an already populated request.
func ValidateStruct(c echo.Context, req interface{}) error {
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validatorDefaultRules(req, err)
	}
	return nil
}

func validatorDefaultRules(req interface{}, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ValidationErrors{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make(ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg := getErrorMessage(e)
		if t.Kind() == reflect.Struct {
			if sf, ok := t.FieldByName(e.StructField()); ok {
				if custom := sf.Tag.Get("msg"); custom != "" {
					msg = custom
				}
			}
		}
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(e.Tag()),
			Field:   e.Field(),
			Message: msg,
		})
	}
	return out
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
