// Package dispatch provides the serial work queues that subsystem threads
// are built on. Each EventLoop is owned by exactly one goroutine; all
// cross-thread communication happens by pushing closures onto the
// destination loop's FIFO queue.
package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"emberline/internal/errs"
	"emberline/internal/logging"
)

// EventLoop is a serial FIFO work queue plus its owner goroutine.
//
// Ordering: calls pushed from a single origin goroutine run on the owner
// goroutine in push order. No ordering is guaranteed across different
// origins beyond queue arrival order.
type EventLoop struct {
	name string

	mu      sync.Mutex
	pending []func()
	timers  []*Timer
	nextID  int
	paused  bool
	stopped bool

	wake chan struct{}
	done chan struct{}

	ownerID atomic.Uint64
	running atomic.Bool

	pauseCallbacks  []func()
	resumeCallbacks []func()
}

// NewEventLoop creates a loop. Calls may be pushed before Start; they run
// once the owner goroutine is up.
func NewEventLoop(name string) *EventLoop {
	return &EventLoop{
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Name returns the loop's subsystem name.
func (l *EventLoop) Name() string { return l.name }

// Start spins up the owner goroutine. Starting twice is a fatal
// precondition failure.
func (l *EventLoop) Start() {
	if !l.running.CompareAndSwap(false, true) {
		errs.Fatalf("event loop %q started twice", l.name)
	}
	go l.run()
}

// Stop asks the owner goroutine to exit after it has drained everything
// queued before this call, then waits for it.
func (l *EventLoop) Stop() {
	if !l.running.Load() {
		return
	}
	l.PushCall(func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
	})
	<-l.done
}

// ThreadIsCurrent reports whether the caller is the loop's owner
// goroutine.
func (l *EventLoop) ThreadIsCurrent() bool {
	return l.ownerID.Load() != 0 && l.ownerID.Load() == goroutineID()
}

// AssertThreadIsCurrent is a fatal check used by thread-affine code.
func (l *EventLoop) AssertThreadIsCurrent() {
	if !l.ThreadIsCurrent() {
		errs.Fatalf("must be called from the %s loop", l.name)
	}
}

// PushCall enqueues fn to run on the owner goroutine. Never blocks.
func (l *EventLoop) PushCall(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	l.signal()
}

// PushCallSynchronous runs fn inline when called from the owner
// goroutine; otherwise it enqueues fn and blocks until it has run.
func (l *EventLoop) PushCallSynchronous(fn func()) {
	if l.ThreadIsCurrent() {
		fn()
		return
	}
	ran := make(chan struct{})
	l.PushCall(func() {
		defer close(ran)
		fn()
	})
	<-ran
}

// AddPauseCallback registers fn to run on the loop when it pauses.
func (l *EventLoop) AddPauseCallback(fn func()) {
	l.mu.Lock()
	l.pauseCallbacks = append(l.pauseCallbacks, fn)
	l.mu.Unlock()
}

// AddResumeCallback registers fn to run on the loop when it resumes.
func (l *EventLoop) AddResumeCallback(fn func()) {
	l.mu.Lock()
	l.resumeCallbacks = append(l.resumeCallbacks, fn)
	l.mu.Unlock()
}

// Pause stops timer delivery on the loop and runs pause callbacks.
// Queued calls still run so the loop stays reachable (Resume itself
// arrives as a queued call).
func (l *EventLoop) Pause() {
	l.PushCall(func() {
		l.mu.Lock()
		already := l.paused
		l.paused = true
		cbs := l.pauseCallbacks
		l.mu.Unlock()
		if already {
			return
		}
		for _, cb := range cbs {
			cb()
		}
	})
}

// Resume re-enables timers and runs resume callbacks.
func (l *EventLoop) Resume() {
	l.PushCall(func() {
		l.mu.Lock()
		already := !l.paused
		l.paused = false
		cbs := l.resumeCallbacks
		l.mu.Unlock()
		if already {
			return
		}
		for _, cb := range cbs {
			cb()
		}
	})
}

func (l *EventLoop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *EventLoop) run() {
	l.ownerID.Store(goroutineID())
	defer close(l.done)
	defer l.ownerID.Store(0)

	idle := time.NewTimer(time.Hour)
	defer idle.Stop()

	for {
		// Drain everything currently queued, in FIFO order.
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		stopped := l.stopped
		l.mu.Unlock()

		for _, fn := range batch {
			l.runOne(fn)
		}
		if stopped {
			return
		}

		next := l.runDueTimers()

		// Sleep until woken or the next timer is due.
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		if next <= 0 {
			next = time.Hour
		}
		idle.Reset(next)
		select {
		case <-l.wake:
		case <-idle.C:
		}
	}
}

// runOne executes a queued call, keeping the loop alive if it panics with
// anything other than a fatal precondition failure.
func (l *EventLoop) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*errs.FatalError); ok {
				panic(f)
			}
			logging.For(l.name).Error("queued call panicked", "panic", r)
		}
	}()
	fn()
}
