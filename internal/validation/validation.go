// Package validation binds request payloads and turns validator failures
// into field-level errors.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/errs"
)

// Validatable is implemented by every request payload.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a hand-written rule failure that struct tags
// cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors collects CustomValidationError values.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	parts := make([]string, 0, len(c))
	for _, e := range c {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return strings.Join(parts, ", ")
}

// MessageError is a validation failure whose message goes to the client
// verbatim, without field details.
type MessageError string

func (m MessageError) Error() string { return string(m) }

// BindAndValidate binds the request into payload and runs its Validate method.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if err := payload.Validate(); err != nil {
		return FromError(err)
	}

	return nil
}

func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusRequestEntityTooLarge {
			return errs.NewPayloadTooLargeError("Request body too large")
		}

		message := "Invalid request body"
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
		return errs.NewBadRequestError(message, true, nil, nil)
	}

	return errs.NewBadRequestError("Invalid request body", true, nil, nil)
}

// FromError maps the result of a Validate method onto a 400 HTTPError.
func FromError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var msg MessageError
	if errors.As(err, &msg) {
		return errs.NewBadRequestError(string(msg), true, nil, nil)
	}

	fieldErrors := extractFieldErrors(err)
	if len(fieldErrors) == 0 {
		return errs.NewBadRequestError(err.Error(), true, nil, nil)
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fe.Field+" "+fe.Error)
	}

	return errs.NewBadRequestError("Validation failed: "+strings.Join(parts, ", "), true, nil, fieldErrors)
}

func extractFieldErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	for _, fe := range validationErrors {
		var msg string

		switch fe.Tag() {
		case "required", "notblank":
			msg = "is required"

		case "min":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		case "email":
			msg = "must be a valid email address"

		case "url", "http_url":
			msg = "must be a valid URL"

		case "dive":
			msg = "some items are invalid"

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("failed %s", fe.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: msg,
		})
	}

	return fieldErrors
}
