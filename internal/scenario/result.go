package scenario

import (
	"errors"
	"strings"
)

// FailureKind classifies why a generation produced no artifact.
type FailureKind string

const (
	FailureBackendUnconfigured FailureKind = "BackendUnconfigured"
	FailureUpstream            FailureKind = "UpstreamError"
	FailureEmptyResult         FailureKind = "EmptyResult"
	FailureInternal            FailureKind = "InternalError"
)

// Failure is the error half of a generation outcome.
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (f *Failure) Error() string {
	if f.Detail != "" {
		return f.Detail
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// FailureKindOf reports the kind of a pipeline error. Errors that are not a
// *Failure are internal.
func FailureKindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureInternal
}

// Normalize trims the backend answer and rejects a blank one, so callers never
// see an empty success.
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &Failure{Kind: FailureEmptyResult, Detail: "Empty response"}
	}
	return text, nil
}
