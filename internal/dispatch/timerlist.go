package dispatch

// ListTimer is a timer owned by a TimerList; it fires when the list is
// explicitly run past its deadline (display-time timers work this way:
// the logic step drives them rather than the wall clock).
type ListTimer struct {
	id     int
	expire int64 // in the list's time base, millisecs
	length int64
	repeat bool
	dead   bool
	fn     func()
}

// ID returns the list-unique timer id.
func (t *ListTimer) ID() int { return t.id }

// SetLength changes the interval and re-bases the deadline on it.
// Repeating timers keep a minimum interval of one unit; a zero length
// would pin Run in its catch-up loop.
func (t *ListTimer) SetLength(now, length int64) {
	if t.repeat && length < 1 {
		length = 1
	}
	t.length = length
	t.expire = now + length
}

// TimerList holds timers run explicitly against a caller-provided clock.
// Not goroutine-safe; it lives on a single owner loop.
type TimerList struct {
	timers []*ListTimer
	nextID int
}

// NewTimerList creates an empty list.
func NewTimerList() *TimerList { return &TimerList{} }

// NewTimer schedules fn at now+length. One-shot unless repeat.
// Repeating intervals are clamped to at least one unit.
func (tl *TimerList) NewTimer(now, length int64, repeat bool, fn func()) *ListTimer {
	if repeat && length < 1 {
		length = 1
	}
	tl.nextID++
	t := &ListTimer{
		id:     tl.nextID,
		expire: now + length,
		length: length,
		repeat: repeat,
		fn:     fn,
	}
	tl.timers = append(tl.timers, t)
	return t
}

// GetTimer looks up a live timer by id, or nil.
func (tl *TimerList) GetTimer(id int) *ListTimer {
	for _, t := range tl.timers {
		if t.id == id && !t.dead {
			return t
		}
	}
	return nil
}

// DeleteTimer marks a timer dead. Missing ids are ignored.
func (tl *TimerList) DeleteTimer(id int) {
	if t := tl.GetTimer(id); t != nil {
		t.dead = true
	}
}

// Run fires every timer due at time now, rearming repeating ones.
func (tl *TimerList) Run(now int64) {
	for _, t := range tl.timers {
		for !t.dead && t.expire <= now {
			t.fn()
			if t.repeat {
				t.expire += t.length
			} else {
				t.dead = true
			}
		}
	}
	live := tl.timers[:0]
	for _, t := range tl.timers {
		if !t.dead {
			live = append(live, t)
		}
	}
	tl.timers = live
}
