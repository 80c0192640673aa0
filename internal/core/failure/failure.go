// Package failure defines the recoverable failure taxonomy returned by the
// reconciliation engine. Failures are values, never panics.
package failure

import (
	"errors"
	"fmt"
)

// Code classifies why a record could not be processed.
type Code string

const (
	AmbiguousMatch    Code = "AMBIGUOUS_MATCH"
	NoIdentity        Code = "NO_IDENTITY"
	JourneyNotReady   Code = "JOURNEY_NOT_READY"
	MissingKey        Code = "MISSING_KEY"
	MissingBaseRecord Code = "MISSING_BASE_RECORD"
	NoBaseRecord      Code = "NO_BASE_RECORD"
	InvalidTransition Code = "INVALID_TRANSITION"
	UnknownStage      Code = "UNKNOWN_STAGE"
	NotFound          Code = "NOT_FOUND"
	InvalidRequest    Code = "INVALID_REQUEST"
)

// Failure is a coded, recoverable error.
type Failure struct {
	Code    Code
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// New builds a Failure with a formatted message.
func New(code Code, format string, args ...any) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// As extracts a Failure from err, if there is one.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// CodeOf returns the failure code carried by err, or "" for infrastructure errors.
func CodeOf(err error) Code {
	if f, ok := As(err); ok {
		return f.Code
	}
	return ""
}
