package usecase

import (
	"errors"
	"fmt"
)

// Error kinds used for boundary mapping. Input errors are never retried
// internally; upstream errors are recovered wherever a fallback exists.
const (
	KindInput    = "input"
	KindUpstream = "upstream"
	KindNotFound = "not_found"
	KindInternal = "internal"
)

// Error carries a classification alongside the message so transport layers
// can map failures without string matching.
type Error struct {
	kind string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error classification.
func (e *Error) Kind() string { return e.kind }

// NewInputError reports malformed or missing request data.
func NewInputError(format string, args ...any) *Error {
	return &Error{kind: KindInput, msg: fmt.Sprintf(format, args...)}
}

// NewUpstreamError wraps a remote-collaborator failure.
func NewUpstreamError(msg string, err error) *Error {
	return &Error{kind: KindUpstream, msg: msg, err: err}
}

// NewNotFoundError reports an absent session or entry reference.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies any error; unexpected faults map to KindInternal so
// boundaries can convert them into a generic failure response.
func ErrorKind(err error) string {
	var classifier interface{ Kind() string }
	if errors.As(err, &classifier) {
		return classifier.Kind()
	}
	return KindInternal
}
