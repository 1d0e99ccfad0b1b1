package logic

import (
	"time"

	"emberline/internal/scripting"
)

// Scripting-facing timer surfaces. App timers run in app time (which
// freezes while paused); display timers run in smoothed display time.
// Both capture the scripting context at creation and fire under it.

// NewAppTimer schedules call after length of app time. Returns the
// timer id.
func (lg *Logic) NewAppTimer(length time.Duration, repeat bool, call scripting.Callable) int {
	lg.loop.AssertThreadIsCurrent()
	cc := scripting.NewContextCall(lg, call)
	t := lg.appTimers.NewTimer(lg.appTimeMillis, length.Milliseconds(), repeat,
		func() {
			if _, err := cc.Run(); err != nil {
				lg.log.Error("app timer callback failed", "err", err)
			}
		})
	return t.ID()
}

// DeleteAppTimer cancels an app timer. A missing id is logged rather
// than raised: scripts routinely race timer deletion against firing.
func (lg *Logic) DeleteAppTimer(id int) {
	lg.loop.AssertThreadIsCurrent()
	if lg.appTimers.GetTimer(id) == nil {
		lg.log.Error("attempt to delete nonexistent app timer", "id", id)
		return
	}
	lg.appTimers.DeleteTimer(id)
}

// SetAppTimerLength changes an app timer's interval, re-basing its next
// fire on the new length.
func (lg *Logic) SetAppTimerLength(id int, length time.Duration) {
	lg.loop.AssertThreadIsCurrent()
	t := lg.appTimers.GetTimer(id)
	if t == nil {
		lg.log.Error("attempt to set length on nonexistent app timer", "id", id)
		return
	}
	t.SetLength(lg.appTimeMillis, length.Milliseconds())
}

// NewDisplayTimer schedules call after length of display time.
func (lg *Logic) NewDisplayTimer(length time.Duration, repeat bool, call scripting.Callable) int {
	lg.loop.AssertThreadIsCurrent()
	cc := scripting.NewContextCall(lg, call)
	now := int64(lg.display.time * 1000.0)
	t := lg.displayTimers.NewTimer(now, length.Milliseconds(), repeat,
		func() {
			if _, err := cc.Run(); err != nil {
				lg.log.Error("display timer callback failed", "err", err)
			}
		})
	return t.ID()
}

// DeleteDisplayTimer cancels a display timer.
func (lg *Logic) DeleteDisplayTimer(id int) {
	lg.loop.AssertThreadIsCurrent()
	if lg.displayTimers.GetTimer(id) == nil {
		lg.log.Error("attempt to delete nonexistent display timer", "id", id)
		return
	}
	lg.displayTimers.DeleteTimer(id)
}

// SetDisplayTimerLength changes a display timer's interval.
func (lg *Logic) SetDisplayTimerLength(id int, length time.Duration) {
	lg.loop.AssertThreadIsCurrent()
	t := lg.displayTimers.GetTimer(id)
	if t == nil {
		lg.log.Error("attempt to set length on nonexistent display timer", "id", id)
		return
	}
	t.SetLength(int64(lg.display.time*1000.0), length.Milliseconds())
}
