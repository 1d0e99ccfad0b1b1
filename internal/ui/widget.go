// Package ui holds the native widget objects and the weak wrappers the
// scripting layer sees them through. Widgets live and die on the logic
// loop; wrappers may outlive them and report death instead of dangling.
package ui

import (
	"sync/atomic"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/logging"
)

// Widget is a native UI element. All mutation happens on the logic
// loop; the loop affinity is checked, not assumed. The dead flag is
// atomic so ref liveness checks can read it from any goroutine.
type Widget struct {
	loop     *dispatch.EventLoop
	typeName string
	dead     atomic.Bool

	parent   *Widget
	children []*Widget

	onDelete []func()
	activate func()

	// The single live wrapper for this widget, nil when none.
	ref *WidgetRef
}

// NewWidget creates a widget on the logic loop.
func NewWidget(loop *dispatch.EventLoop, typeName string) *Widget {
	loop.AssertThreadIsCurrent()
	return &Widget{loop: loop, typeName: typeName}
}

// TypeName returns the widget's type name ("button", "text", ...).
func (w *Widget) TypeName() string { return w.typeName }

// SetActivate installs the activation handler.
func (w *Widget) SetActivate(fn func()) {
	w.loop.AssertThreadIsCurrent()
	w.activate = fn
}

// Activate fires the widget's activation handler.
func (w *Widget) Activate() error {
	w.loop.AssertThreadIsCurrent()
	if w.dead.Load() {
		return errs.Newf(errs.KindWidgetNotFound,
			"%s widget no longer exists", w.typeName)
	}
	if w.activate != nil {
		w.activate()
	}
	return nil
}

// AddOnDeleteCall registers fn to run when the widget dies.
func (w *Widget) AddOnDeleteCall(fn func()) {
	w.loop.AssertThreadIsCurrent()
	w.onDelete = append(w.onDelete, fn)
}

// Parent returns the widget's parent, nil at the root.
func (w *Widget) Parent() *Widget { return w.parent }

// Children returns the widget's live children.
func (w *Widget) Children() []*Widget {
	w.loop.AssertThreadIsCurrent()
	return w.children
}

// AddChild parents child under w.
func (w *Widget) AddChild(child *Widget) {
	w.loop.AssertThreadIsCurrent()
	if child.parent != nil {
		errs.Fatalf("widget already has a parent")
	}
	child.parent = w
	w.children = append(w.children, child)
}

// Delete destroys the widget and its subtree. On-delete callbacks fire
// before the widget is marked dead so they can still inspect it; any
// wrapper stays valid as an object but reports the target gone.
func (w *Widget) Delete() {
	w.loop.AssertThreadIsCurrent()
	if w.dead.Load() {
		return
	}
	for _, fn := range w.onDelete {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.For("ui").Error("on-delete callback panicked",
						"widget", w.typeName, "err", r)
				}
			}()
			fn()
		}()
	}
	w.onDelete = nil
	for _, child := range w.children {
		child.parent = nil
		child.Delete()
	}
	w.children = nil
	if w.parent != nil {
		w.parent.removeChild(w)
		w.parent = nil
	}
	w.dead.Store(true)
	if w.ref != nil {
		w.ref.target.Store(nil)
		w.ref = nil
	}
}

func (w *Widget) removeChild(child *Widget) {
	for i, c := range w.children {
		if c == child {
			w.children = append(w.children[:i], w.children[i+1:]...)
			return
		}
	}
}
