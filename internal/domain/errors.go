package domain

import (
	"errors"
	"net/http"
)

// Code classifies an AppError.
type Code int

const (
	CodeNotFound Code = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeUnauthorized
)

// codeStatus is the HTTP status each code is served with.
var codeStatus = map[Code]int{
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeValidation:    http.StatusBadRequest,
	CodeInternal:      http.StatusInternalServerError,
	CodeUnauthorized:  http.StatusUnauthorized,
}

// Status returns the HTTP status for c; unknown codes are a 500.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Public reports whether messages with this code were written for clients.
// Internal messages may name tables or drivers and stay server side.
func (c Code) Public() bool {
	s, ok := codeStatus[c]
	return ok && s < http.StatusInternalServerError
}

// AppError is a failure the HTTP layer knows how to report: "order item not
// found", "email already exists" and so on. Err keeps the cause for logs.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// Generic errors for each code. Match with the Is* helpers, which compare
// codes, rather than errors.Is, which only matches these exact values.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError returns an AppError wrapping err, which may be nil.
func NewAppError(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or 0.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func IsNotFound(err error) bool      { return CodeOf(err) == CodeNotFound }
func IsAlreadyExists(err error) bool { return CodeOf(err) == CodeAlreadyExists }
func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsInternal(err error) bool      { return CodeOf(err) == CodeInternal }
func IsUnauthorized(err error) bool  { return CodeOf(err) == CodeUnauthorized }

// HTTPStatusCode maps err to a response status. Errors that are not an
// AppError are a 500.
func HTTPStatusCode(err error) int {
	return CodeOf(err).Status()
}
