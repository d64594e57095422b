package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API error carrying a stable machine code and the HTTP status it
// maps to. Err keeps the underlying cause for logs and is never serialised.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New declares an error kind.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a code, status and message to a lower-level error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WrapAs wraps err with the code and status of kind.
func WrapAs(err error, kind *Error, message string) *Error {
	if message == "" {
		message = kind.Message
	}
	return Wrap(err, kind.Code, kind.Status, message)
}

// General error kinds.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrArchivedAccount    = New("ACCOUNT_ARCHIVED", http.StatusForbidden, "account is archived")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrServiceUnavailable = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusTooManyRequests, "too many attempts, try again later")
)

// Token and session errors. Expired and invalid stay distinct so clients know when to re-login.
var (
	ErrTokenExpired = New("TOKEN_EXPIRED", http.StatusUnauthorized, "token expired, please log in again")
	ErrTokenInvalid = New("TOKEN_INVALID", http.StatusUnauthorized, "invalid token")
	ErrTokenMissing = New("TOKEN_MISSING", http.StatusUnauthorized, "authentication token required")
	ErrUnknownRole  = New("UNKNOWN_ROLE", http.StatusUnauthorized, "unknown role in token")
)

// OTP and archive lifecycle errors.
var (
	ErrOTPInvalid         = New("OTP_INVALID", http.StatusUnauthorized, "invalid otp")
	ErrOTPExpired         = New("OTP_EXPIRED", http.StatusUnauthorized, "otp expired, request a new one")
	ErrOTPMissing         = New("OTP_MISSING", http.StatusUnauthorized, "no pending otp, request a new one")
	ErrArchiveAuditFailed = New("ARCHIVE_AUDIT_FAILED", http.StatusInternalServerError, "state changed but the archive record could not be written")
)

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	var e *Error
	if target == nil || !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}

// FromError returns the *Error in err's chain, or an INTERNAL_ERROR wrapping err.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapAs(err, ErrInternal, "")
}

// Clone copies a declared kind, replacing its message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
