package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "media-transcriber/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindTooLarge           ErrorKind = "too_large"
	KindUnsupportedMedia   ErrorKind = "unsupported_media"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Details: fields}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

func NewTooLargeError(message string) *APIError {
	return &APIError{Kind: KindTooLarge, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Kind: KindServiceUnavailable, Message: message}
}

// FromError maps an application error onto an API error. Sentinels from the
// app errors package pick the kind; anything else is internal.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case stderrors.Is(err, apperrors.ErrFileNotFound), stderrors.Is(err, apperrors.ErrProviderNotFound):
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrFileTooLarge):
		return &APIError{Kind: KindTooLarge, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrUnsupportedFormat):
		return &APIError{Kind: KindUnsupportedMedia, Message: err.Error()}
	case apperrors.IsValidationError(err):
		return &APIError{Kind: KindValidation, Message: err.Error()}
	default:
		return &APIError{Kind: KindInternal, Message: "Internal server error"}
	}
}
