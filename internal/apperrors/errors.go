package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeInvalidTransition       ErrorCode = "INVALID_TRANSITION"
	CodeDuplicateAction         ErrorCode = "DUPLICATE_ACTION"
	CodeExternalServiceDegraded ErrorCode = "EXTERNAL_SERVICE_DEGRADED"
	CodeStaleWrite              ErrorCode = "STALE_WRITE"
	CodeStoreUnavailable        ErrorCode = "STORE_UNAVAILABLE"
	CodeNotFound                ErrorCode = "NOT_FOUND"
	CodeValidation              ErrorCode = "VALIDATION_ERROR"
	CodeForbidden               ErrorCode = "FORBIDDEN"
	CodePaymentRequired         ErrorCode = "PAYMENT_REQUIRED"
	CodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. AppError.Is matches them by code.
var (
	ErrInvalidTransition = &AppError{Code: CodeInvalidTransition}
	ErrDuplicateAction   = &AppError{Code: CodeDuplicateAction}
	ErrDegraded          = &AppError{Code: CodeExternalServiceDegraded}
	ErrStaleWrite        = &AppError{Code: CodeStaleWrite}
	ErrStoreUnavailable  = &AppError{Code: CodeStoreUnavailable}
	ErrNotFound          = &AppError{Code: CodeNotFound}
	ErrValidation        = &AppError{Code: CodeValidation}
	ErrForbidden         = &AppError{Code: CodeForbidden}
	ErrPaymentRequired   = &AppError{Code: CodePaymentRequired}
)

// AppError is the error type returned across the service boundary.
// From and To are set for transition failures.
type AppError struct {
	Code    ErrorCode
	Message string
	From    string
	To      string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidTransition, CodeDuplicateAction, CodeStaleWrite:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodePaymentRequired:
		return http.StatusPaymentRequired
	case CodeStoreUnavailable, CodeExternalServiceDegraded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewInvalidTransition(from, to, message string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: message,
		From:    from,
		To:      to,
	}
}

func NewDuplicateAction(message string) *AppError {
	return &AppError{Code: CodeDuplicateAction, Message: message}
}

func NewDegraded(service string, err error) *AppError {
	return &AppError{
		Code:    CodeExternalServiceDegraded,
		Message: service + " is degraded",
		Err:     err,
	}
}

func NewStaleWrite(id string) *AppError {
	return &AppError{
		Code:    CodeStaleWrite,
		Message: fmt.Sprintf("posting %s changed before the update was applied", id),
	}
}

func NewStoreUnavailable(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "store unavailable",
		Err:     err,
	}
}

func NewNotFound(resource, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", resource, id),
	}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewPaymentRequired(message string, err error) *AppError {
	return &AppError{Code: CodePaymentRequired, Message: message, Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// As extracts an *AppError from err, wrapping unknown errors as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}
