// Package logic owns the logic event loop: the thread where scripting
// runs, app timers fire, and the ambient context lives.
package logic

import (
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/logging"
	"emberline/internal/scripting"
)

// Logic runs the game's brain. It implements scripting.Host so the
// scripting layer can schedule against it without knowing about event
// loops.
type Logic struct {
	loop *dispatch.EventLoop
	log  *logging.Logger

	// Context slot. Logic loop only.
	ctx scripting.Context
	// Foreground context, updated as scenes/sessions come and go.
	fgCtx scripting.Context

	appTimers     *dispatch.TimerList
	displayTimers *dispatch.TimerList

	// App time advances only while running (pause stops it).
	appTimeMillis   int64
	lastStepAt      time.Time
	haveLastStep    bool
	paused          bool

	display displayTimeState

	// Installed by the app; initiates the full ordered shutdown.
	shutdownFn func()
	shuttingDown bool
}

// New creates the logic subsystem around its own event loop. The loop
// is created here but started by the app, which controls start order.
func New() *Logic {
	return &Logic{
		loop:          dispatch.NewEventLoop("logic"),
		log:           logging.For("logic"),
		appTimers:     dispatch.NewTimerList(),
		displayTimers: dispatch.NewTimerList(),
	}
}

// Loop returns the logic event loop.
func (lg *Logic) Loop() *dispatch.EventLoop { return lg.loop }

// ThreadIsCurrent reports whether the caller is on the logic loop.
func (lg *Logic) ThreadIsCurrent() bool { return lg.loop.ThreadIsCurrent() }

// PushCall enqueues fn onto the logic loop.
func (lg *Logic) PushCall(fn func()) { lg.loop.PushCall(fn) }

// CurrentContext returns the installed context, nil when empty.
func (lg *Logic) CurrentContext() scripting.Context {
	lg.loop.AssertThreadIsCurrent()
	return lg.ctx
}

// SetContext installs ctx as current.
func (lg *Logic) SetContext(ctx scripting.Context) {
	lg.loop.AssertThreadIsCurrent()
	lg.ctx = ctx
}

// ForegroundContext returns the foreground scene/session context.
func (lg *Logic) ForegroundContext() scripting.Context {
	lg.loop.AssertThreadIsCurrent()
	return lg.fgCtx
}

// SetForegroundContext installs the foreground context.
func (lg *Logic) SetForegroundContext(ctx scripting.Context) {
	lg.loop.AssertThreadIsCurrent()
	lg.fgCtx = ctx
}

// SetShutdownFn installs the app's shutdown entry point. Set once
// during app construction.
func (lg *Logic) SetShutdownFn(fn func()) { lg.shutdownFn = fn }

// RequestShutdown asks for an orderly shutdown. Safe from any
// goroutine; repeat requests are ignored.
func (lg *Logic) RequestShutdown() {
	lg.loop.PushCall(func() {
		if lg.shuttingDown {
			return
		}
		lg.shuttingDown = true
		lg.log.Info("shutdown requested")
		if lg.shutdownFn != nil {
			lg.shutdownFn()
		}
	})
}

// OnAppStart runs logic-side startup on the logic loop.
func (lg *Logic) OnAppStart() {
	lg.loop.AssertThreadIsCurrent()
	lg.log.Info("logic started")
}

// OnAppPause freezes app time.
func (lg *Logic) OnAppPause() {
	lg.loop.AssertThreadIsCurrent()
	lg.paused = true
	lg.haveLastStep = false
}

// OnAppResume unfreezes app time.
func (lg *Logic) OnAppResume() {
	lg.loop.AssertThreadIsCurrent()
	lg.paused = false
}

// OnAppShutdown runs logic-side teardown.
func (lg *Logic) OnAppShutdown() {
	lg.loop.AssertThreadIsCurrent()
	lg.log.Info("logic shut down")
}

// ApplyAppConfig picks up config-derived logic settings.
func (lg *Logic) ApplyAppConfig(values map[string]any) {
	lg.loop.AssertThreadIsCurrent()
	lg.log.Debug("config applied", "keys", len(values))
}

// OnScreenSizeChange reacts to a new screen size.
func (lg *Logic) OnScreenSizeChange(width, height float64) {
	lg.loop.AssertThreadIsCurrent()
	lg.log.Debug("screen size changed", "w", width, "h", height)
}

// StepAppTime advances app time to now and fires due app timers.
// Driven from the logic loop's frame step; no-op while paused.
func (lg *Logic) StepAppTime(now time.Time) {
	lg.loop.AssertThreadIsCurrent()
	if lg.paused {
		return
	}
	if lg.haveLastStep {
		lg.appTimeMillis += now.Sub(lg.lastStepAt).Milliseconds()
	}
	lg.lastStepAt = now
	lg.haveLastStep = true
	lg.appTimers.Run(lg.appTimeMillis)
}

// AppTimeMillis returns the current app time in milliseconds.
func (lg *Logic) AppTimeMillis() int64 {
	lg.loop.AssertThreadIsCurrent()
	return lg.appTimeMillis
}
