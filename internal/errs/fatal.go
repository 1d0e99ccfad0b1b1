package errs

import (
	"errors"
	"fmt"
)

// FatalError marks an unrecoverable precondition violation. It is
// delivered by panic so it cannot be absorbed into a normal error-return
// path; the process should abort with the diagnostic rather than keep
// running in an inconsistent state.
type FatalError struct {
	Msg string
}

func (f *FatalError) Error() string { return "fatal: " + f.Msg }

// Fatalf reports a fatal precondition failure.
func Fatalf(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}

// Precondition panics with a fatal diagnostic if cond is false.
func Precondition(cond bool, msg string) {
	if !cond {
		Fatalf("precondition failed: %s", msg)
	}
}

// As is errors.As re-exported so callers don't need both imports.
func As(err error, target any) bool { return errors.As(err, target) }
