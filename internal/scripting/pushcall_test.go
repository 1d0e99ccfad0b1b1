package scripting

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
)

type namedContext struct{ name string }

func (c *namedContext) ContextDescription() string { return c.name }

// testHost is a minimal Host over a real event loop.
type testHost struct {
	loop   *dispatch.EventLoop
	ctx    Context
	fg     Context
	pushes atomic.Int64
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	h := &testHost{loop: dispatch.NewEventLoop("logic")}
	h.loop.Start()
	t.Cleanup(h.loop.Stop)
	return h
}

func (h *testHost) ThreadIsCurrent() bool { return h.loop.ThreadIsCurrent() }
func (h *testHost) PushCall(fn func()) {
	h.pushes.Add(1)
	h.loop.PushCall(fn)
}
func (h *testHost) CurrentContext() Context       { return h.ctx }
func (h *testHost) SetContext(ctx Context)        { h.ctx = ctx }
func (h *testHost) ForegroundContext() Context    { return h.fg }

func (h *testHost) onLoop(t *testing.T, fn func()) {
	t.Helper()
	h.loop.PushCallSynchronous(fn)
}

func TestPushCallWrongThreadFailsWithoutEnqueue(t *testing.T) {
	h := newTestHost(t)

	var ran bool
	err := PushCall(h, CallableFunc(func(args ...any) (any, error) {
		ran = true
		return nil, nil
	}), false, false, false, false)

	if err == nil {
		t.Fatal("expected an error from off-loop PushCall")
	}
	if errs.KindOf(err) != errs.KindPrecondition {
		t.Errorf("got kind %v, want precondition", errs.KindOf(err))
	}
	if h.pushes.Load() != 0 {
		t.Error("failed PushCall still enqueued work")
	}
	if ran {
		t.Error("failed PushCall still ran the callable")
	}
}

func TestPushCallSameThreadRunsSynchronously(t *testing.T) {
	h := newTestHost(t)

	h.onLoop(t, func() {
		var ran bool
		err := PushCall(h, CallableFunc(func(args ...any) (any, error) {
			ran = true
			return nil, nil
		}), false, false, false, false)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !ran {
			t.Error("call had not run when PushCall returned")
		}
	})
}

func TestPushCallSameThreadRestoresContext(t *testing.T) {
	h := newTestHost(t)

	outer := &namedContext{name: "outer"}
	h.onLoop(t, func() {
		h.SetContext(outer)
		inner := &namedContext{name: "inner"}
		PushCall(h, CallableFunc(func(args ...any) (any, error) {
			h.SetContext(inner)
			return nil, errors.New("boom")
		}), false, false, false, false)
		if h.CurrentContext() != outer {
			t.Errorf("context not restored after failing call: got %v", h.CurrentContext())
		}
	})
}

func TestPushCallFromOtherThreadRunsExactlyOnceOnLoop(t *testing.T) {
	h := newTestHost(t)

	var runs atomic.Int64
	var onLoop atomic.Bool
	done := make(chan struct{})
	err := PushCall(h, CallableFunc(func(args ...any) (any, error) {
		runs.Add(1)
		onLoop.Store(h.ThreadIsCurrent())
		close(done)
		return nil, nil
	}), true, false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cross-thread call never ran")
	}
	if runs.Load() != 1 {
		t.Errorf("call ran %d times, want 1", runs.Load())
	}
	if !onLoop.Load() {
		t.Error("cross-thread call ran off the logic loop")
	}
}

func TestPushCallFromOtherThreadContextModes(t *testing.T) {
	h := newTestHost(t)
	fg := &namedContext{name: "foreground"}
	h.onLoop(t, func() { h.fg = fg })

	cases := []struct {
		name    string
		useFg   bool
		wantCtx Context
	}{
		{"empty context", false, nil},
		{"foreground context", true, fg},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := make(chan Context, 1)
			err := PushCall(h, CallableFunc(func(args ...any) (any, error) {
				got <- h.CurrentContext()
				return nil, nil
			}), true, false, tc.useFg, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			select {
			case ctx := <-got:
				if ctx != tc.wantCtx {
					t.Errorf("ran under %v, want %v", ctx, tc.wantCtx)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("call never ran")
			}
		})
	}
}

func TestPushCallRawSkipsContextHandling(t *testing.T) {
	h := newTestHost(t)
	outer := &namedContext{name: "outer"}
	h.onLoop(t, func() { h.ctx = outer })

	got := make(chan Context, 1)
	err := PushCall(h, CallableFunc(func(args ...any) (any, error) {
		got <- h.CurrentContext()
		return nil, nil
	}), false, false, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case ctx := <-got:
		if ctx != outer {
			t.Errorf("raw call saw context %v, want the loop's ambient %v", ctx, outer)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("raw call never ran")
	}
}

func TestContextCallRestoresOnPanic(t *testing.T) {
	h := newTestHost(t)

	outer := &namedContext{name: "outer"}
	h.onLoop(t, func() {
		h.SetContext(outer)
		cc := NewContextCall(h, CallableFunc(func(args ...any) (any, error) {
			h.SetContext(&namedContext{name: "inner"})
			panic("scripted-side explosion")
		}))
		func() {
			defer func() { recover() }()
			cc.Run()
		}()
		if h.CurrentContext() != outer {
			t.Errorf("context not restored after panic: got %v", h.CurrentContext())
		}
	})
}

func TestTranslateErrorPassesTypedThrough(t *testing.T) {
	orig := errs.New(errs.KindWidgetNotFound, "widget gone")
	if got := TranslateError(orig); got != orig {
		t.Errorf("typed error was rewrapped: %v", got)
	}
	foreign := errors.New("plain failure")
	if errs.KindOf(TranslateError(foreign)) != errs.KindValue {
		t.Error("foreign error was not tagged as a value error")
	}
	if TranslateError(nil) != nil {
		t.Error("nil error became non-nil")
	}
}
