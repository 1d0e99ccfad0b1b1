package ui

import (
	"testing"
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
)

func startLogicLoop(t *testing.T) *dispatch.EventLoop {
	t.Helper()
	loop := dispatch.NewEventLoop("logic")
	loop.Start()
	t.Cleanup(loop.Stop)
	return loop
}

func TestRefExistsTracksWidgetLifetime(t *testing.T) {
	loop := startLogicLoop(t)

	loop.PushCallSynchronous(func() {
		w := NewWidget(loop, "button")
		ref, err := NewRef(w)
		if err != nil {
			t.Fatalf("NewRef failed: %v", err)
		}
		if !ref.Exists() {
			t.Error("ref reports dead for a live widget")
		}

		w.Delete()
		if ref.Exists() {
			t.Error("ref reports alive for a deleted widget")
		}
		if _, err := ref.Get(); errs.KindOf(err) != errs.KindWidgetNotFound {
			t.Errorf("deref of dead widget: got kind %v, want widget-not-found", errs.KindOf(err))
		}
		if err := ref.Activate(); errs.KindOf(err) != errs.KindWidgetNotFound {
			t.Errorf("activate of dead widget: got kind %v, want widget-not-found", errs.KindOf(err))
		}
	})
}

func TestNewRefOffLoopIsTypedError(t *testing.T) {
	loop := startLogicLoop(t)

	var w *Widget
	loop.PushCallSynchronous(func() { w = NewWidget(loop, "button") })

	_, err := NewRef(w)
	if err == nil {
		t.Fatal("off-loop NewRef succeeded")
	}
	if errs.KindOf(err) != errs.KindContext {
		t.Errorf("got kind %v, want context", errs.KindOf(err))
	}
}

func TestOneLiveRefPerWidget(t *testing.T) {
	loop := startLogicLoop(t)

	loop.PushCallSynchronous(func() {
		w := NewWidget(loop, "button")
		r1, _ := NewRef(w)
		r2, _ := NewRef(w)
		if r1 != r2 {
			t.Error("widget handed out two live refs")
		}

		r1.Release()
		r3, _ := NewRef(w)
		if r3 == r1 {
			t.Error("released ref was handed out again")
		}
	})
}

func TestReleaseOffLoopDefersToLoop(t *testing.T) {
	loop := startLogicLoop(t)

	var w *Widget
	var ref *WidgetRef
	loop.PushCallSynchronous(func() {
		w = NewWidget(loop, "button")
		ref, _ = NewRef(w)
	})

	// Off-loop release must not touch loop state inline.
	ref.Release()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var unlinked bool
		loop.PushCallSynchronous(func() { unlinked = w.ref == nil })
		if unlinked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("deferred release never ran on the loop")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExistsIsSafeFromAnyGoroutine(t *testing.T) {
	loop := startLogicLoop(t)

	var ref *WidgetRef
	loop.PushCallSynchronous(func() {
		w := NewWidget(loop, "button")
		ref, _ = NewRef(w)
	})

	// Scripts poll liveness off-loop while the loop deletes and
	// releases; the check must stay consistent throughout.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				ref.Exists()
			}
		}
	}()

	loop.PushCallSynchronous(func() {
		w, err := ref.Get()
		if err != nil {
			t.Errorf("live widget deref failed: %v", err)
			return
		}
		w.Delete()
	})
	ref.Release()
	close(stop)
	<-done

	if ref.Exists() {
		t.Error("ref reports alive after delete")
	}
}

func TestDeleteFiresOnDeleteCallbacksAndSubtree(t *testing.T) {
	loop := startLogicLoop(t)

	loop.PushCallSynchronous(func() {
		parent := NewWidget(loop, "container")
		child := NewWidget(loop, "button")
		parent.AddChild(child)

		var order []string
		parent.AddOnDeleteCall(func() { order = append(order, "parent") })
		child.AddOnDeleteCall(func() { order = append(order, "child") })

		childRef, _ := NewRef(child)
		parent.Delete()

		if len(order) != 2 || order[0] != "parent" || order[1] != "child" {
			t.Errorf("on-delete order %v, want [parent child]", order)
		}
		if childRef.Exists() {
			t.Error("child survived parent deletion")
		}
	})
}

func TestActivateRunsHandler(t *testing.T) {
	loop := startLogicLoop(t)

	loop.PushCallSynchronous(func() {
		w := NewWidget(loop, "button")
		var clicks int
		w.SetActivate(func() { clicks++ })
		if err := w.Activate(); err != nil {
			t.Fatalf("activate failed: %v", err)
		}
		if clicks != 1 {
			t.Errorf("got %d activations, want 1", clicks)
		}
	})
}
