package domain

import (
	"errors"
	"fmt"
)

// ErrNoFallbackAvailable means no substitute package exists in the reseller
// catalog. Fatal for the order it was raised for, never retried.
var ErrNoFallbackAvailable = errors.New("no fallback package available")

// ValidationError reports bad local package data. The order is not started.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid package data: %s: %s", e.Field, e.Reason)
}

// RejectionError means the upstream reseller refused the slug. Not retryable
// with the same slug; triggers fallback resolution.
type RejectionError struct {
	Slug       string
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("reseller rejected package %q (status %d): %s", e.Slug, e.StatusCode, e.Message)
}

// AuthError is a configuration-level failure (bad or expired API key). Never
// retried automatically.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("reseller authentication failed (status %d)", e.StatusCode)
}

// TransientError covers network failures, timeouts and upstream 5xx. Retried
// with a small fixed bound.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient reseller error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
