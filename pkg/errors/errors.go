package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeNotFound               = "NOT_FOUND"
	CodeUpstream               = "UPSTREAM_UNAVAILABLE"
	CodeInsufficientCandidates = "INSUFFICIENT_CANDIDATES"
	CodeCache                  = "CACHE_ERROR"
	CodeValidation             = "VALIDATION_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus reports the status carried by the error. Wrapper types pick it
// up by promotion, so status extraction works on the concrete wrappers too.
func (e *AppError) HTTPStatus() int {
	return e.StatusCode
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NotFoundError marks a title or id absent from the catalog.
type NotFoundError struct {
	*AppError
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s not found: %s", resource, key),
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"resource": resource,
				"key":      key,
			},
		},
		Resource: resource,
		Key:      key,
	}
}

// UpstreamError marks a non-success or unreachable external metadata call.
type UpstreamError struct {
	*AppError
}

func NewUpstreamError(message string, statusCode int, context map[string]any) *UpstreamError {
	return &UpstreamError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeUpstream,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// WithCause keeps the concrete type so errors.As still matches after
// chaining.
func (e *UpstreamError) WithCause(cause error) *UpstreamError {
	e.Cause = cause
	return e
}

// InsufficientCandidatesError marks a recommendation pool that shrank below
// the requested sample size after filtering.
type InsufficientCandidatesError struct {
	*AppError
	Requested int
	Available int
}

func NewInsufficientCandidatesError(requested, available int) *InsufficientCandidatesError {
	return &InsufficientCandidatesError{
		AppError: &AppError{
			Message:    fmt.Sprintf("only %d of %d requested candidates available", available, requested),
			Code:       CodeInsufficientCandidates,
			StatusCode: 404,
			Context: map[string]any{
				"requested": requested,
				"available": available,
			},
		},
		Requested: requested,
		Available: available,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return stderrors.As(err, &target)
}

func IsInsufficientCandidates(err error) bool {
	var target *InsufficientCandidatesError
	return stderrors.As(err, &target)
}

// StatusCode extracts the HTTP status carried by an AppError or one of its
// wrapper types, defaulting to 500. Matching goes through the promoted
// HTTPStatus method: the wrappers embed *AppError rather than being one, so
// a *AppError target would never match them.
func StatusCode(err error) int {
	var carrier interface{ HTTPStatus() int }
	if stderrors.As(err, &carrier) {
		if status := carrier.HTTPStatus(); status > 0 {
			return status
		}
	}
	return 500
}
