// Package scripting is the boundary between the native engine and an
// embedded scripting runtime. The runtime itself is an external
// collaborator: the engine only ever sees callables it can invoke and
// method tables it exposes. No object model or ABI lives here.
package scripting

import (
	"emberline/internal/errs"
)

// Callable is anything the scripting runtime hands us to invoke later.
// Errors raised on the scripted side arrive as ordinary error values and
// are translated to typed native failures at this boundary.
type Callable interface {
	Call(args ...any) (any, error)
}

// CallableFunc adapts a plain function to Callable.
type CallableFunc func(args ...any) (any, error)

func (f CallableFunc) Call(args ...any) (any, error) { return f(args...) }

// TranslateError tags a scripting-side error for native consumption.
// Already-typed engine errors pass through untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var e *errs.Error
	if errs.As(err, &e) {
		return err
	}
	return errs.Wrap(errs.KindValue, err, "scripting call failed")
}

// Context is the ambient execution context (current scene/session/UI
// realm) that deferred calls must run under explicitly rather than
// inheriting from whoever happened to schedule them.
type Context interface {
	ContextDescription() string
}

// Host is the owner-thread surface the scripting layer schedules against.
// The logic subsystem implements it.
type Host interface {
	// ThreadIsCurrent reports whether the caller is on the logic loop.
	ThreadIsCurrent() bool
	// PushCall enqueues fn onto the logic loop.
	PushCall(fn func())
	// CurrentContext returns the context installed on the logic loop
	// (nil when empty). Logic loop only.
	CurrentContext() Context
	// SetContext installs ctx as current. Logic loop only.
	SetContext(ctx Context)
	// ForegroundContext returns the context of whatever scene/session is
	// in the foreground, or nil.
	ForegroundContext() Context
}

// ScopedContext installs ctx and returns a restore func for defer. The
// restore runs on every exit path, so nested or re-entrant dispatch can
// never leak context state.
func ScopedContext(h Host, ctx Context) (restore func()) {
	prev := h.CurrentContext()
	h.SetContext(ctx)
	return func() { h.SetContext(prev) }
}
