package ui

import (
	"sync/atomic"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
)

// WidgetRef is the weak wrapper handed across the scripting boundary.
// It never keeps its widget alive: the widget dies on its own schedule
// and the ref reports that instead of dangling. A widget has at most
// one live ref; asking again returns the same one.
type WidgetRef struct {
	loop *dispatch.EventLoop

	// Cleared by Widget.Delete and by Release, always on the logic
	// loop. Atomic because Exists reads it from any goroutine.
	target atomic.Pointer[Widget]
}

// NewRef returns the wrapper for w, creating it if needed. Refs can
// only be created on the logic loop; elsewhere this is a typed error,
// not a crash, since scripts reach this path.
func NewRef(w *Widget) (*WidgetRef, error) {
	if !w.loop.ThreadIsCurrent() {
		return nil, errs.Newf(errs.KindContext,
			"widget refs can only be created in the %s loop", w.loop.Name())
	}
	if w.dead.Load() {
		return nil, errs.Newf(errs.KindWidgetNotFound,
			"%s widget no longer exists", w.typeName)
	}
	if w.ref != nil {
		return w.ref, nil
	}
	r := &WidgetRef{loop: w.loop}
	r.target.Store(w)
	w.ref = r
	return r, nil
}

// Exists reports whether the target widget is still alive. Cheap and
// side-effect-free; scripts use it as the truthiness of a widget, from
// any goroutine.
func (r *WidgetRef) Exists() bool {
	w := r.target.Load()
	return w != nil && !w.dead.Load()
}

// Get returns the live target widget. A dead or released target is a
// typed not-found error for the script to handle.
func (r *WidgetRef) Get() (*Widget, error) {
	r.loop.AssertThreadIsCurrent()
	w := r.target.Load()
	if w == nil || w.dead.Load() {
		return nil, errs.New(errs.KindWidgetNotFound,
			"widget no longer exists")
	}
	return w, nil
}

// Activate activates the target widget if it still exists.
func (r *WidgetRef) Activate() error {
	w, err := r.Get()
	if err != nil {
		return err
	}
	return w.Activate()
}

// Release severs the wrapper from its widget. The last holder of a ref
// may drop it from any goroutine, so when called off the logic loop the
// unlink is deferred onto it rather than touching loop-affine state
// here.
func (r *WidgetRef) Release() {
	if r.loop.ThreadIsCurrent() {
		r.releaseOnLoop()
		return
	}
	r.loop.PushCall(r.releaseOnLoop)
}

func (r *WidgetRef) releaseOnLoop() {
	if w := r.target.Load(); w != nil {
		w.ref = nil
		r.target.Store(nil)
	}
}
