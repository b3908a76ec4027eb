// Package errors provides structured error handling for the application.
// Every error that crosses the HTTP boundary is an *AppError carrying a code
// that maps onto a status code and a stable JSON envelope.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Catalog errors
	CodeRecipeNotFound     ErrorCode = "RECIPE_NOT_FOUND"
	CodeImageNotFound      ErrorCode = "IMAGE_NOT_FOUND"
	CodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
)

var statusByCode = map[ErrorCode]int{
	CodeBadRequest:           http.StatusBadRequest,
	CodeValidationFailed:     http.StatusBadRequest,
	CodeNotFound:             http.StatusNotFound,
	CodeRecipeNotFound:       http.StatusNotFound,
	CodeImageNotFound:        http.StatusNotFound,
	CodeMethodNotAllowed:     http.StatusMethodNotAllowed,
	CodeConflict:             http.StatusConflict,
	CodeTooManyRequests:      http.StatusTooManyRequests,
	CodeServiceUnavailable:   http.StatusServiceUnavailable,
	CodeCatalogUnavailable:   http.StatusServiceUnavailable,
	CodeExternalServiceError: http.StatusBadGateway,
}

// AppError is an error with a stable code, a human message and optional
// details for the client.
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code. Unknown codes are
// internal errors.
func (e *AppError) StatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

func NewNotFoundError(resource string) *AppError {
	if resource == "" {
		return NewAppError(CodeNotFound, "Resource not found", "")
	}
	return NewAppError(CodeNotFound, resource+" not found", "")
}

func NewMethodNotAllowedError(method string) *AppError {
	return NewAppError(CodeMethodNotAllowed, "Method not allowed", method)
}

func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, "")
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(CodeDatabaseError, "Database operation failed", "Failed to "+operation).
		WithCause(cause)
}

func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(CodeExternalServiceError, "External service error", "Failed to communicate with "+service).
		WithCause(cause)
}

func NewRecipeNotFoundError(recipeID int) *AppError {
	return NewAppError(CodeRecipeNotFound, "Recipe not found",
		fmt.Sprintf("Recipe with ID %d does not exist", recipeID)).
		WithMetadata("recipe_id", recipeID)
}

func NewImageNotFoundError(recipeID int) *AppError {
	return NewAppError(CodeImageNotFound, "Image not found",
		fmt.Sprintf("No image has been generated for recipe %d", recipeID)).
		WithMetadata("recipe_id", recipeID)
}

// NewCatalogUnavailableError is returned while no recipe snapshot is loaded.
func NewCatalogUnavailableError() *AppError {
	return NewAppError(CodeCatalogUnavailable, "Recipe catalog unavailable",
		"The recipe catalog has not been loaded yet")
}

// FieldError describes one failed validation rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// FromValidation converts the result of validator.Struct into a
// VALIDATION_FAILED error listing the offending fields. Other errors are
// reported as plain validation failures.
func FromValidation(err error) *AppError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return NewValidationError(err.Error()).WithCause(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		names = append(names, fe.Field()+" failed "+fe.Tag())
	}

	return NewValidationError(strings.Join(names, "; ")).
		WithCause(err).
		WithMetadata("fields", fields)
}

// Wrap returns err as an *AppError, turning anything else into an internal
// error with the given message.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: strconv.FormatInt(time.Now().Unix(), 10),
		},
	}
}
