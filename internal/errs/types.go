package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// It is serialized directly to JSON by the global error handler:
//   - Message: human-friendly message, exposed as "error".
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Status: HTTP status code.
//   - Override: the message is safe to show even in production.
//   - Errors: per-field validation errors.
//   - Detail/Name/Stack: underlying cause, filled outside production only.
type HTTPError struct {
	Message  string       `json:"error"`
	Code     string       `json:"code"`
	Status   int          `json:"status"`
	Override bool         `json:"-"`
	Errors   []FieldError `json:"errors,omitempty"`

	Detail string `json:"detail,omitempty"`
	Name   string `json:"name,omitempty"`
	Stack  string `json:"stack,omitempty"`
}

// Error makes *HTTPError satisfy the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError. errors.Is(err, &HTTPError{})
// is a cheap "did this come from us" check; it does not compare fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithDetail returns a copy carrying the cause's message and type name.
func (e *HTTPError) WithDetail(name, detail string) *HTTPError {
	clone := *e
	clone.Name = name
	clone.Detail = detail
	return &clone
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
