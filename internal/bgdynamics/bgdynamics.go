// Package bgdynamics owns the background-dynamics thread: low-rate
// cosmetic simulation (debris, dust) stepped on its own loop so the
// logic loop never waits on it.
package bgdynamics

import (
	"sync"
	"sync/atomic"
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/logging"
)

// stepInterval is the background simulation rate.
const stepInterval = 50 * time.Millisecond

// Task is one unit of background simulation, stepped with the elapsed
// time since the previous step.
type Task func(dt time.Duration)

// BGDynamics is the background-dynamics subsystem.
type BGDynamics struct {
	loop *dispatch.EventLoop
	log  *logging.Logger

	mu    sync.Mutex
	tasks []Task

	steps atomic.Int64
}

// New builds the subsystem; its loop starts with the app.
func New() *BGDynamics {
	return &BGDynamics{
		loop: dispatch.NewEventLoop("bgdynamics"),
		log:  logging.For("bgdynamics"),
	}
}

// Loop returns the background-dynamics loop.
func (bg *BGDynamics) Loop() *dispatch.EventLoop { return bg.loop }

// AddTask registers fn to run each step. Callable from any goroutine.
func (bg *BGDynamics) AddTask(fn Task) {
	bg.mu.Lock()
	bg.tasks = append(bg.tasks, fn)
	bg.mu.Unlock()
}

// OnAppStart arms the repeating step timer. The loop must already be
// running; pausing the loop parks the timer with it.
func (bg *BGDynamics) OnAppStart() {
	bg.loop.PushCallSynchronous(func() {
		last := time.Now()
		bg.loop.NewTimer(stepInterval, true, func() {
			now := time.Now()
			bg.step(now.Sub(last))
			last = now
		})
	})
}

func (bg *BGDynamics) step(dt time.Duration) {
	bg.mu.Lock()
	tasks := append([]Task(nil), bg.tasks...)
	bg.mu.Unlock()
	for _, fn := range tasks {
		fn(dt)
	}
	bg.steps.Add(1)
}

// Steps reports how many simulation steps have run.
func (bg *BGDynamics) Steps() int64 { return bg.steps.Load() }
