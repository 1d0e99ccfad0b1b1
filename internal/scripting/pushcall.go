package scripting

import (
	"emberline/internal/errs"
	"emberline/internal/logging"
)

// PushCall is the scripting-visible scheduling entry point. The four
// boolean modifiers combine exactly as follows:
//
//   - raw: no thread check, no context save/restore. The call is queued
//     onto the logic loop as-is. Advanced callers accept responsibility
//     for correctness.
//   - fromOtherThread: required when calling from anywhere that is not
//     the logic loop. The call runs later on the logic loop under an
//     empty context, or under the foreground context when
//     otherThreadUseFgContext is set. Using this flag while already on
//     the logic loop logs a warning unless suppressOtherThreadWarning.
//   - neither: the caller must already be on the logic loop; the call
//     runs synchronously through a ContextCall so the context present
//     before the call is restored when it returns or fails. Calling from
//     any other thread fails with a precondition error and enqueues
//     nothing.
//
// Ownership hand-off note: the original native layer manually
// incremented a refcount before enqueueing and released it exactly once
// on the receiving thread; here the closure capture owns the callable
// and the collector handles the rest.
func PushCall(h Host, call Callable, fromOtherThread, suppressOtherThreadWarning, otherThreadUseFgContext, raw bool) error {
	switch {
	case raw:
		h.PushCall(func() {
			if _, err := call.Call(); err != nil {
				logging.For("scripting").Error("raw pushed call failed",
					"err", TranslateError(err))
			}
		})

	case fromOtherThread:
		if !suppressOtherThreadWarning && h.ThreadIsCurrent() {
			logging.For("scripting").Warn(
				"PushCall invoked from the logic loop with" +
					" fromOtherThread set; that flag should only be" +
					" used from other threads")
		}
		h.PushCall(func() {
			var ctx Context
			if otherThreadUseFgContext {
				ctx = h.ForegroundContext()
			}
			restore := ScopedContext(h, ctx)
			defer restore()
			if _, err := call.Call(); err != nil {
				logging.For("scripting").Error("pushed call failed",
					"err", TranslateError(err))
			}
		})

	default:
		if !h.ThreadIsCurrent() {
			return errs.New(errs.KindPrecondition,
				"you must use fromOtherThread mode when scheduling"+
					" from outside the logic loop")
		}
		_, err := NewContextCall(h, call).Run()
		return err
	}
	return nil
}
