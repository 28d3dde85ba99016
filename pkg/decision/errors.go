package decision

import (
	"errors"
	"fmt"
)

// Kind is the closed set of ways a decision request can fail instead of
// producing a Decision. Rejection (Decision.Allowed == false) is not a Kind:
// it is a normal, successful outcome.
type Kind string

const (
	// InvalidRequest means userId or modelId was missing or empty.
	InvalidRequest Kind = "InvalidRequest"

	// CatalogUnavailable means a catalog lookup failed (I/O, schema, deadline).
	CatalogUnavailable Kind = "CatalogUnavailable"

	// NoPolicy means the resolver produced an empty effective-limit list.
	NoPolicy Kind = "NoPolicy"

	// StoreUnavailable means a non-conflict counting-store error occurred.
	StoreUnavailable Kind = "StoreUnavailable"

	// StoreContention means a counter exhausted its retry budget.
	StoreContention Kind = "StoreContention"
)

// Error is the single error type surfaced by this package. Callers should
// use errors.As to recover the Kind rather than matching on message text.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match two *Error values by Kind rather than identity, so
// errors.Is(err, &decision.Error{Kind: decision.InvalidRequest}) holds for any
// InvalidRequest error. A bare Kind is not an error and cannot be a target.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewInvalidRequest builds an InvalidRequest error for a missing or empty
// required field.
func NewInvalidRequest(message string) *Error {
	return newError(InvalidRequest, message, nil)
}

// NewCatalogUnavailable wraps a catalog adapter failure.
func NewCatalogUnavailable(message string, cause error) *Error {
	return newError(CatalogUnavailable, message, cause)
}

// NewNoPolicy builds the error surfaced when the resolver's effective-limit
// list is empty.
func NewNoPolicy(message string) *Error {
	return newError(NoPolicy, message, nil)
}

// NewStoreUnavailable wraps a non-conflict counting-store failure.
func NewStoreUnavailable(message string, cause error) *Error {
	return newError(StoreUnavailable, message, cause)
}

// NewStoreContention builds the error surfaced when a counter exhausts its
// retry budget against a contended key.
func NewStoreContention(message string) *Error {
	return newError(StoreContention, message, nil)
}

// KindOf extracts the Kind from err if it is (or wraps) a *decision.Error.
// It returns ("", false) for any other error, including nil.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
