package upstream

import (
	"errors"
	"fmt"
)

// Service errors
var (
	ErrNotFound     = errors.New("registry resource not found")
	ErrUnauthorized = errors.New("registry credentials missing or rejected")
	ErrForbidden    = errors.New("registry access forbidden")
	ErrRateLimited  = errors.New("registry rate limit exceeded")
	ErrUpstream     = errors.New("registry upstream error")
)

// ErrorKind classifies registry failures.
type ErrorKind string

const (
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindForbidden    ErrorKind = "forbidden"
	ErrorKindRateLimited  ErrorKind = "rate_limited"
	ErrorKindUpstream     ErrorKind = "upstream"
)

// UpstreamError includes registry response metadata for error mapping.
type UpstreamError struct {
	Kind       ErrorKind
	Status     int
	RetryAfter string
	cause      error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "registry upstream error"
	}
	if e.cause == nil {
		return fmt.Sprintf("registry upstream error (kind=%s status=%d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("registry upstream error (kind=%s status=%d): %v", e.Kind, e.Status, e.cause)
}

// Unwrap enables errors.Is/As against sentinel service errors.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
