package qrstyle

import (
	"errors"
	"fmt"
)

// Kind classifies why a render failed.
type Kind string

const (
	// KindValidation covers malformed payloads and unsupported configuration.
	KindValidation Kind = "VALIDATION"
	// KindEncoding means the payload does not fit the requested error-correction level.
	KindEncoding Kind = "ENCODING_FAILURE"
	// KindLogoDecode means the logo could not be fetched or decoded.
	KindLogoDecode Kind = "LOGO_DECODE_FAILURE"
	// KindRender covers unexpected drawing-surface or serialization errors.
	KindRender Kind = "RENDER_FAILURE"
)

// Error is the single error type returned by the engine.
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

// Unwrap returns the originating cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf extracts the kind from err, or "" if err was not produced by the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the human-readable part of err without the kind prefix.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
