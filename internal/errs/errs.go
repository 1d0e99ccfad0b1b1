// Package errs defines the engine's error taxonomy.
//
// Recoverable failures (missing objects, bad argument types, IO trouble)
// travel as ordinary error values carrying a Kind tag plus a stack trace
// captured at creation time. Fatal precondition violations use a separate
// channel (Fatalf) that cannot be caught and ignored by accident.
package errs

import (
	"fmt"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an engine error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound - a referenced object/resource no longer exists.
	KindNotFound
	// KindWidgetNotFound - a UI widget weak-ref points at a dead widget.
	KindWidgetNotFound
	// KindDeviceNotFound - an input device id is no longer registered.
	KindDeviceNotFound
	// KindContext - an operation is invalid in the current context.
	KindContext
	// KindType - malformed external input: wrong argument type.
	KindType
	// KindValue - malformed external input: bad argument value.
	KindValue
	// KindUnsupported - capability not available on this platform.
	KindUnsupported
	// KindIO - platform/OS level failure (file write, rename, ...).
	KindIO
	// KindPrecondition - programming error: wrong thread, re-entrant
	// single-use call, etc. Usually raised via Fatalf instead, but some
	// boundary entry points surface it as a value so the scripting side
	// can fail fast without taking the process down.
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindWidgetNotFound:
		return "widget-not-found"
	case KindDeviceNotFound:
		return "device-not-found"
	case KindContext:
		return "context"
	case KindType:
		return "type"
	case KindValue:
		return "value"
	case KindUnsupported:
		return "unsupported"
	case KindIO:
		return "io"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Error is a recoverable engine error. The stack is captured when the
// error is created but only symbolized the first time a full description
// is requested, keeping the non-error path cheap.
type Error struct {
	kind  Kind
	msg   string
	cause error // carries the pkg/errors stack

	descOnce sync.Once
	desc     string
}

// New creates a tagged error with a captured stack.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg, cause: pkgerrors.New(msg)}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap tags an underlying error, preserving its text and attaching a
// stack from the wrap site.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:  kind,
		msg:   msg + ": " + err.Error(),
		cause: pkgerrors.Wrap(err, msg),
	}
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error's taxonomy tag.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// Description returns the message plus a symbolized stack trace.
// Symbolization happens once, on first call.
func (e *Error) Description() string {
	e.descOnce.Do(func() {
		e.desc = fmt.Sprintf("%s (%s)\n%+v", e.msg, e.kind, e.cause)
	})
	return e.desc
}

// KindOf returns the Kind tag of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is any of the not-found flavors.
func IsNotFound(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindWidgetNotFound, KindDeviceNotFound:
		return true
	}
	return false
}
