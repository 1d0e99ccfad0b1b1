package dispatch

import (
	"time"
)

// Timer is a loop-owned timer. All timer methods must be called from the
// owning loop's goroutine; the loop runs the callback inline between
// queued calls.
type Timer struct {
	id     int
	length time.Duration // < 0 means sleeping
	repeat bool
	next   time.Time
	dead   bool
	fn     func()
}

// ID returns the loop-unique timer id.
func (t *Timer) ID() int { return t.id }

// SetLength changes the timer interval. A negative length puts the timer
// to sleep until a new length is set.
func (t *Timer) SetLength(d time.Duration) {
	t.length = d
	if d >= 0 {
		t.next = time.Now().Add(d)
	}
}

// NewTimer registers a timer on the loop. One-shot timers fire exactly
// once and cannot be canceled once scheduled; repeating timers rearm
// until deleted.
func (l *EventLoop) NewTimer(length time.Duration, repeat bool, fn func()) *Timer {
	l.AssertThreadIsCurrent()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	t := &Timer{
		id:     l.nextID,
		length: length,
		repeat: repeat,
		next:   time.Now().Add(length),
		fn:     fn,
	}
	l.timers = append(l.timers, t)
	l.signal()
	return t
}

// GetTimer looks up a live timer by id, or nil.
func (l *EventLoop) GetTimer(id int) *Timer {
	l.AssertThreadIsCurrent()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		if t.id == id && !t.dead {
			return t
		}
	}
	return nil
}

// DeleteTimer removes a repeating timer. Missing ids are ignored; the
// higher layers log in that case.
func (l *EventLoop) DeleteTimer(id int) {
	l.AssertThreadIsCurrent()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		if t.id == id {
			t.dead = true
			return
		}
	}
}

// runDueTimers fires due timers and reports how long until the next one,
// or 0 when no timer is armed. Owner goroutine only.
func (l *EventLoop) runDueTimers() time.Duration {
	l.mu.Lock()
	paused := l.paused
	snapshot := make([]*Timer, len(l.timers))
	copy(snapshot, l.timers)
	l.mu.Unlock()

	if paused {
		return 0
	}

	now := time.Now()
	var next time.Duration
	for _, t := range snapshot {
		if t.dead || t.length < 0 {
			continue
		}
		if !t.next.After(now) {
			l.runOne(t.fn)
			if t.repeat {
				t.next = now.Add(t.length)
			} else {
				t.dead = true
				continue
			}
		}
		d := time.Until(t.next)
		if d < time.Millisecond {
			d = time.Millisecond
		}
		if next == 0 || d < next {
			next = d
		}
	}

	// Compact dead timers.
	l.mu.Lock()
	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.dead {
			live = append(live, t)
		}
	}
	l.timers = live
	l.mu.Unlock()
	return next
}
