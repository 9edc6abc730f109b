package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeConstraint = "CONSTRAINT_VIOLATION"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// FieldError is a single failed constraint on one input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Path + ": " + f.Message
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Branch  string       `json:"branch,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Details string       `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Branch names the union variant that was attempted, when validation failed.
	Branch string
	Fields []FieldError
	Err    error
}

func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Field returns the first error recorded for path.
func (e *AppError) Field(path string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return FieldError{}, false
}

// Response converts the error into its wire form.
func (e *AppError) Response() ErrorResponse {
	resp := ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Branch: e.Branch,
		Fields: e.Fields,
	}
	if e.Err != nil && e.Code != CodeInternal {
		resp.Details = e.Err.Error()
	}
	return resp
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError reports per-field failures for the given union branch.
func NewFieldValidationError(schema, branch string, fields []FieldError) *AppError {
	msg := "invalid " + schema
	if branch != "" {
		msg = fmt.Sprintf("invalid %s (%s)", schema, branch)
	}
	return &AppError{
		Code:    CodeValidation,
		Message: msg,
		Branch:  branch,
		Fields:  fields,
	}
}

// NewConstraintViolation reports a write that referenced a row that does not exist.
func NewConstraintViolation(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeConstraint,
		Message: fmt.Sprintf("%s references a row that does not exist", resource),
		Err:     err,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code in err's chain, or "" when there is none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsValidation(err error) bool { return ErrorCode(err) == CodeValidation }
func IsConstraint(err error) bool { return ErrorCode(err) == CodeConstraint }
func IsNotFound(err error) bool   { return ErrorCode(err) == CodeNotFound }
func IsConflict(err error) bool   { return ErrorCode(err) == CodeConflict }

// HTTPStatus maps the AppError code in err's chain to a response status.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConstraint:
		return fiber.StatusUnprocessableEntity
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err as an ErrorResponse with the given status.
// Errors outside the AppError family are reported as internal errors without
// their message.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}
	return c.Status(status).JSON(appErr.Response())
}
