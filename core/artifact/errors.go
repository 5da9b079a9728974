// Package artifact implements the artifact lifecycle: converting note
// sequences into rendered audio and promoting transient conversions into
// permanently kept artifacts.
package artifact

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure for callers. The split follows how a
// caller should react: fix the input, retry, or re-convert.
type Kind string

const (
	// KindInvalidInput: bad notes or name; no external call was made.
	KindInvalidInput Kind = "invalid_input"
	// KindUpstreamFailure: the synthesis engine failed or timed out.
	KindUpstreamFailure Kind = "upstream_failure"
	// KindStorageFailure: the blob store rejected an upload or was unreachable.
	KindStorageFailure Kind = "storage_failure"
	// KindPersistenceFailure: the database write failed; any already-uploaded
	// object has been deleted best-effort.
	KindPersistenceFailure Kind = "persistence_failure"
	// KindNotFound: the referenced artifact is gone, e.g. already reclaimed.
	KindNotFound Kind = "not_found"
	// KindUnauthorized: the caller does not own the referenced artifact.
	KindUnauthorized Kind = "unauthorized"
)

// Error is the failure type surfaced by the conversion and promotion
// services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds a service error.
func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the failure kind from an error chain. Unclassified errors
// return the empty kind and callers treat them as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
