package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the boundary layers.
type Kind int

const (
	// KindInput - The caller supplied an unusable request.
	KindInput Kind = iota
	// KindNotFound - A referenced file or resource does not exist.
	KindNotFound
	// KindProvider - An external provider call failed.
	KindProvider
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "INPUT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindProvider:
		return "PROVIDER"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", k)
	}
}

// Error is a classified pipeline failure. Op names the operation that
// failed; Err is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// inputErr wraps err as a caller error for op.
func inputErr(op string, err error) *Error {
	return &Error{Kind: KindInput, Op: op, Err: err}
}

// notFoundErr wraps err as a missing-resource error for op.
func notFoundErr(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

// providerErr wraps err as an upstream provider failure for op.
func providerErr(op string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// KindOf extracts the failure kind from err. Unclassified errors report as
// provider failures so the boundary never leaks internals as caller faults.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindProvider
}
