// Package app assembles the engine: it builds the subsystems in
// dependency order, runs the lifecycle fan-out across them, and owns
// process-level concerns like the committed config and shutdown.
package app

import (
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"emberline/internal/assets"
	"emberline/internal/audio"
	"emberline/internal/bgdynamics"
	"emberline/internal/config"
	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/graphics"
	"emberline/internal/input"
	"emberline/internal/logging"
	"emberline/internal/logic"
	"emberline/internal/networking"
	"emberline/internal/platform"
	"emberline/internal/scripting"
)

// Options configures app construction.
type Options struct {
	ConfigPath  string // empty = <config dir>/config.yaml
	NetworkAddr string // empty = ephemeral udp port
	ScreenW     float64
	ScreenH     float64
	AudioVoices int
	CloudSink   logging.CloudSink // optional early-log destination
}

// App is the engine root. Exactly one per process; it builds its
// subsystems once and they outlive every consumer. Subsystem pointers
// never change after New returns.
type App struct {
	log *logging.Logger

	Platform *platform.Platform
	Config   *config.Store
	Logic    *logic.Logic
	Graphics *graphics.Graphics
	Audio    *audio.Audio
	Assets   *assets.Assets
	BG       *bgdynamics.BGDynamics
	Input    *input.Input
	Net      *networking.Networking

	instanceUUID string
	base         *baseFeatureSet

	// Fan-out order. Forward for start/resume/config, reverse for
	// pause/shutdown.
	subsystems []Subsystem

	started  bool
	startMu  sync.Mutex
	doneOnce sync.Once
	done     chan struct{}

	earlyLogs *logging.EarlyBuffer
	cloudSink logging.CloudSink

	consoleMu      sync.Mutex
	console        func(string)
	pendingConsole []string

	msgMu          sync.Mutex
	screenMessages []string
}

// New builds the app and its subsystems. Order matters: platform first
// (everything asks it questions), then config, then the loop-owning
// subsystems, then the ones that depend on those loops.
func New(opts Options) (*App, error) {
	a := &App{
		log:          logging.For("app"),
		done:         make(chan struct{}),
		earlyLogs:    logging.NewEarlyBuffer(256),
		cloudSink:    opts.CloudSink,
		instanceUUID: platform.RandomUUID(),
	}

	a.Platform = platform.New("emberline")

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		dir, err := a.Platform.ConfigDirectory()
		if err != nil {
			return nil, err
		}
		cfgPath = filepath.Join(dir, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	a.Config = cfg

	if opts.ScreenW == 0 {
		opts.ScreenW, opts.ScreenH = 1280, 720
	}
	if opts.AudioVoices == 0 {
		opts.AudioVoices = 32
	}

	a.Logic = logic.New()
	a.Graphics = graphics.New(opts.ScreenW, opts.ScreenH)
	a.Audio = audio.New(a.Platform.Music(), opts.AudioVoices)
	a.Assets = assets.New(a.Platform.FS())
	a.BG = bgdynamics.New()
	a.Input = input.New(a.Logic.Loop())

	net, err := networking.New(opts.NetworkAddr, nil)
	if err != nil {
		return nil, err
	}
	a.Net = net

	a.Logic.SetShutdownFn(a.shutdown)
	a.Graphics.SetOnSizeChange(a.onScreenSizeChange)

	a.subsystems = []Subsystem{
		&platformSubsystem{plat: a.Platform},
		&logicSubsystem{lg: a.Logic},
		&graphicsSubsystem{gfx: a.Graphics},
		&audioSubsystem{au: a.Audio},
		&assetsSubsystem{as: a.Assets},
		&bgDynamicsSubsystem{bg: a.BG},
		&inputSubsystem{in: a.Input, lg: a.Logic},
		&networkSubsystem{net: a.Net},
	}
	return a, nil
}

// InstanceUUID returns this run's unique id.
func (a *App) InstanceUUID() string { return a.instanceUUID }

// BaseModule returns the native method table the scripting runtime
// binds, nil before StartApp.
func (a *App) BaseModule() *scripting.Module {
	if a.base == nil {
		return nil
	}
	return a.base.Module()
}

// StartApp boots the engine. Callable exactly once per process; a
// second call is a fatal precondition failure. Runs on the main
// goroutine.
func (a *App) StartApp() {
	a.startMu.Lock()
	if a.started {
		a.startMu.Unlock()
		errs.Fatalf("StartApp called twice")
	}
	a.started = true
	a.startMu.Unlock()

	a.log.Info("start-app begin", "instance", a.instanceUUID)

	// Platform gets the first word, before any subsystem runs.
	a.Platform.OnMainThreadStartApp()

	// The base feature set exists before any script can import it.
	a.base = a.importBase()

	// Loop owners start before anything that schedules onto them.
	for _, loop := range a.loops() {
		loop.Start()
	}

	for _, s := range a.subsystems {
		s.OnAppStart()
	}

	logging.FlushEarly(a.earlyLogs, a.cloudSink)

	// Env is complete once startup config handling is underway.
	a.Platform.FinalizeEnv()

	// The initial config apply is pushed rather than run inline so it
	// executes after anything subsystems queued during their starts.
	values := a.Config.Snapshot()
	a.Logic.PushCall(func() {
		a.applyAppConfig(values)
	})

	a.log.Info("start-app end")
}

func (a *App) loops() []*dispatch.EventLoop {
	return []*dispatch.EventLoop{
		a.Logic.Loop(),
		a.Graphics.Loop(),
		a.Audio.Loop(),
		a.Assets.Loop(),
		a.BG.Loop(),
		a.Net.WriteLoop(),
	}
}

// Pause suspends the app, reverse subsystem order.
func (a *App) Pause() {
	a.log.Info("app pausing")
	for i := len(a.subsystems) - 1; i >= 0; i-- {
		a.subsystems[i].OnAppPause()
	}
}

// Resume wakes the app, forward subsystem order.
func (a *App) Resume() {
	a.log.Info("app resuming")
	for _, s := range a.subsystems {
		s.OnAppResume()
	}
}

// ApplyAppConfig re-reads the committed config and fans the values out
// to every subsystem, forward order. Call after mutating config.
func (a *App) ApplyAppConfig() {
	values := a.Config.Snapshot()
	a.Logic.PushCall(func() { a.applyAppConfig(values) })
}

func (a *App) applyAppConfig(values map[string]any) {
	a.log.Debug("applying app config", "keys", len(values))
	for _, s := range a.subsystems {
		s.ApplyAppConfig(values)
	}
}

func (a *App) onScreenSizeChange(w, h float64) {
	for _, s := range a.subsystems {
		s.OnScreenSizeChange(w, h)
	}
}

// shutdown is the orderly teardown, invoked via Logic.RequestShutdown.
// Fan-out runs in reverse order, then the loops stop, then Run
// returns.
func (a *App) shutdown() {
	a.log.Info("shutdown begin")
	for i := len(a.subsystems) - 1; i >= 0; i-- {
		a.subsystems[i].OnAppShutdown()
	}
	if a.Config.Dirty() {
		if err := a.Config.Commit(); err != nil {
			a.log.Error("config commit at shutdown failed", "err", err)
		}
	}
	go func() {
		// Stopping the loops has to happen off the logic loop; Stop
		// waits for each loop to drain and the logic loop is one of
		// them.
		for _, loop := range a.loops() {
			loop.Stop()
		}
		a.log.Info("shutdown end")
		a.doneOnce.Do(func() { close(a.done) })
	}()
}

// Run blocks until the app has fully shut down. Interrupt signals
// route to an orderly shutdown.
func (a *App) Run() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s, ok := <-sig
		if ok {
			a.log.Info("signal received", "signal", s)
			a.Logic.RequestShutdown()
		}
	}()
	<-a.done
	signal.Stop(sig)
	close(sig)
}

// ScreenMessage shows msg to the user in-game. Callable from any
// goroutine; delivery happens on the logic loop.
func (a *App) ScreenMessage(msg string) {
	a.Logic.PushCall(func() {
		a.msgMu.Lock()
		a.screenMessages = append(a.screenMessages, msg)
		if len(a.screenMessages) > 64 {
			a.screenMessages = a.screenMessages[1:]
		}
		a.msgMu.Unlock()
		a.log.Info("screen message", "msg", msg)
	})
}

// ScreenMessages returns the retained recent messages.
func (a *App) ScreenMessages() []string {
	a.msgMu.Lock()
	defer a.msgMu.Unlock()
	return append([]string(nil), a.screenMessages...)
}

// ConsolePrint writes a line to the in-game console, buffering until
// one is attached so early boot output is not lost.
func (a *App) ConsolePrint(s string) {
	a.consoleMu.Lock()
	defer a.consoleMu.Unlock()
	if a.console == nil {
		a.pendingConsole = append(a.pendingConsole, s)
		return
	}
	a.console(s)
}

// SetConsole attaches the console sink and replays buffered output.
func (a *App) SetConsole(sink func(string)) {
	a.consoleMu.Lock()
	defer a.consoleMu.Unlock()
	a.console = sink
	for _, s := range a.pendingConsole {
		sink(s)
	}
	a.pendingConsole = nil
}

// EarlyLog records a pre-boot log line for later cloud delivery and
// also emits it locally.
func (a *App) EarlyLog(msg string) {
	a.earlyLogs.Add(logging.InfoLevel, msg)
	a.log.Info(msg)
}
