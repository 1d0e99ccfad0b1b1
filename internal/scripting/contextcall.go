package scripting

import (
	"emberline/internal/errs"
	"emberline/internal/logging"
)

// ContextCall binds a callable to the context that was current when the
// call object was created. Running it later installs that context,
// invokes the callable, and restores whatever context was present before
// - on every exit path, including panics on the scripted side.
type ContextCall struct {
	host Host
	call Callable
	ctx  Context
}

// NewContextCall captures the current context. Logic loop only; creating
// one elsewhere is a fatal precondition failure.
func NewContextCall(h Host, call Callable) *ContextCall {
	if !h.ThreadIsCurrent() {
		errs.Fatalf("ContextCall created off the logic loop")
	}
	return &ContextCall{host: h, call: call, ctx: h.CurrentContext()}
}

// Run invokes the callable under the captured context.
func (c *ContextCall) Run(args ...any) (any, error) {
	restore := ScopedContext(c.host, c.ctx)
	defer restore()
	res, err := c.call.Call(args...)
	return res, TranslateError(err)
}

// Schedule queues the call to run on the logic loop. Errors from the
// callable are logged; scheduled calls have nobody left to return to.
func (c *ContextCall) Schedule() {
	c.host.PushCall(func() {
		if _, err := c.Run(); err != nil {
			logging.For("scripting").Error("scheduled call failed",
				"err", err)
		}
	})
}
