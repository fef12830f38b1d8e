package tyclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNameConflict is returned when a namespace or operation name would
	// shadow a core client member.
	ErrNameConflict = errors.New("tyclient: name conflict")

	// ErrMalformedRoute is returned when an interpolated route is not an
	// absolute URL but query parameters must be appended to it.
	ErrMalformedRoute = errors.New("tyclient: malformed route")

	// ErrInvalidGroup is returned when a namespace or registration group is
	// neither a map with string keys nor a struct.
	ErrInvalidGroup = errors.New("tyclient: invalid group")

	// ErrEndpointType is returned by Lookup when the endpoint's payload or
	// result type differs from the requested one.
	ErrEndpointType = errors.New("tyclient: endpoint type mismatch")
)

// unknownErrorMessage is used when a failed response carries no message.
const unknownErrorMessage = "An unknown error has occurred."

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeUnauthenticated   ErrorCode = "unauthenticated"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeNotFound          ErrorCode = "not_found"
	CodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	CodeConflict          ErrorCode = "conflict"
	CodeAlreadyExists     ErrorCode = "already_exists"
	CodeGone              ErrorCode = "gone"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	CodeCanceled          ErrorCode = "canceled"
	CodeInternal          ErrorCode = "internal"
	CodeNotImplemented    ErrorCode = "not_implemented"
	CodeUnavailable       ErrorCode = "unavailable"
	CodeDeadlineExceeded  ErrorCode = "deadline_exceeded"
	CodeUnknown           ErrorCode = "unknown"
)

// Error is returned by operations whose response status is outside
// [200, 400), and by validation of descriptors, options and payloads.
// Status is the response status, or for errors raised before a request was
// sent, the status matching Code.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error returns the message, which for failed responses is the message
// reported by the server.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  code.HTTPStatus(),
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Status:  code.HTTPStatus(),
	}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Details: details,
	}
}

// HTTPStatus maps an ErrorCode to an HTTP status code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeConflict, CodeAlreadyExists:
		return http.StatusConflict
	case CodeGone:
		return http.StatusGone
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodeCanceled:
		return 499 // Client Closed Request (Nginx standard)
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromHTTPStatus maps a response status to an ErrorCode.
// Statuses with no dedicated code map to CodeInternal for 5xx and
// CodeUnknown otherwise.
func CodeFromHTTPStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeInvalidArgument
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusConflict:
		return CodeConflict
	case http.StatusGone:
		return CodeGone
	case http.StatusTooManyRequests:
		return CodeResourceExhausted
	case 499:
		return CodeCanceled
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeUnavailable
	case http.StatusGatewayTimeout:
		return CodeDeadlineExceeded
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeUnknown
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsCanceled reports whether err comes from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// responseError classifies a failed response. data is the parsed body, or
// nil when the body was empty or not JSON.
func responseError(status int, data any) *Error {
	e := &Error{
		Code:    CodeFromHTTPStatus(status),
		Message: unknownErrorMessage,
		Status:  status,
	}

	body, ok := data.(map[string]any)
	if !ok {
		return e
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		e.Message = msg
		return e
	}

	// tygor servers wrap errors as {"error": {"code": ..., "message": ...}}.
	envelope, ok := body["error"].(map[string]any)
	if !ok {
		return e
	}
	if msg, ok := envelope["message"].(string); ok && msg != "" {
		e.Message = msg
	}
	if code, ok := envelope["code"].(string); ok && code != "" {
		e.Code = ErrorCode(code)
	}
	if details, ok := envelope["details"].(map[string]any); ok {
		e.Details = details
	}
	return e
}

// validationError converts validator errors into an invalid_argument Error
// with one detail per failing field. Other errors are returned unchanged.
func validationError(err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Field()] = msg
		messages = append(messages, ve.Field()+": "+msg)
	}
	return &Error{
		Code:    CodeInvalidArgument,
		Message: strings.Join(messages, "; "),
		Status:  CodeInvalidArgument.HTTPStatus(),
		Details: details,
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_without":
		return "required"
	case "excluded_with":
		return fmt.Sprintf("must be empty when %s is set", ve.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
