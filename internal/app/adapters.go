package app

import (
	"emberline/internal/assets"
	"emberline/internal/audio"
	"emberline/internal/bgdynamics"
	"emberline/internal/graphics"
	"emberline/internal/input"
	"emberline/internal/logic"
	"emberline/internal/networking"
	"emberline/internal/platform"
)

// Adapters bridging the engine subsystems onto the lifecycle surface.
// Loop-affine handlers get dispatched synchronously so fan-out order
// holds across loops.

type logicSubsystem struct {
	BaseSubsystem
	lg *logic.Logic
}

func (s *logicSubsystem) Name() string { return "logic" }
func (s *logicSubsystem) OnAppStart() {
	s.lg.Loop().PushCallSynchronous(s.lg.OnAppStart)
}
func (s *logicSubsystem) OnAppPause() {
	s.lg.Loop().PushCallSynchronous(s.lg.OnAppPause)
}
func (s *logicSubsystem) OnAppResume() {
	s.lg.Loop().PushCallSynchronous(s.lg.OnAppResume)
}
func (s *logicSubsystem) OnAppShutdown() {
	s.lg.Loop().PushCallSynchronous(s.lg.OnAppShutdown)
}
func (s *logicSubsystem) ApplyAppConfig(values map[string]any) {
	s.lg.Loop().PushCallSynchronous(func() { s.lg.ApplyAppConfig(values) })
}
func (s *logicSubsystem) OnScreenSizeChange(w, h float64) {
	s.lg.Loop().PushCall(func() { s.lg.OnScreenSizeChange(w, h) })
}

type graphicsSubsystem struct {
	BaseSubsystem
	gfx *graphics.Graphics
}

func (s *graphicsSubsystem) Name() string { return "graphics" }
func (s *graphicsSubsystem) ApplyAppConfig(values map[string]any) {
	s.gfx.Loop().PushCallSynchronous(func() { s.gfx.ApplyAppConfig(values) })
}
func (s *graphicsSubsystem) OnAppPause()  { s.gfx.Loop().Pause() }
func (s *graphicsSubsystem) OnAppResume() { s.gfx.Loop().Resume() }

type audioSubsystem struct {
	BaseSubsystem
	au *audio.Audio
}

func (s *audioSubsystem) Name() string                       { return "audio" }
func (s *audioSubsystem) OnAppPause()                        { s.au.OnAppPause() }
func (s *audioSubsystem) OnAppResume()                       { s.au.OnAppResume() }
func (s *audioSubsystem) OnAppShutdown()                     { s.au.OnAppShutdown() }
func (s *audioSubsystem) ApplyAppConfig(values map[string]any) { s.au.ApplyAppConfig(values) }

type assetsSubsystem struct {
	BaseSubsystem
	as *assets.Assets
}

func (s *assetsSubsystem) Name() string  { return "assets" }
func (s *assetsSubsystem) OnAppPause()   { s.as.Loop().Pause() }
func (s *assetsSubsystem) OnAppResume()  { s.as.Loop().Resume() }

type bgDynamicsSubsystem struct {
	BaseSubsystem
	bg *bgdynamics.BGDynamics
}

func (s *bgDynamicsSubsystem) Name() string  { return "bgdynamics" }
func (s *bgDynamicsSubsystem) OnAppStart()   { s.bg.OnAppStart() }
func (s *bgDynamicsSubsystem) OnAppPause()   { s.bg.Loop().Pause() }
func (s *bgDynamicsSubsystem) OnAppResume()  { s.bg.Loop().Resume() }

type inputSubsystem struct {
	BaseSubsystem
	in *input.Input
	lg *logic.Logic
}

func (s *inputSubsystem) Name() string { return "input" }
func (s *inputSubsystem) ApplyAppConfig(values map[string]any) {
	s.lg.Loop().PushCallSynchronous(func() { s.in.ApplyAppConfig(values) })
}
func (s *inputSubsystem) OnAppShutdown() {
	s.lg.Loop().PushCallSynchronous(s.in.Reset)
}

type networkSubsystem struct {
	BaseSubsystem
	net *networking.Networking
}

func (s *networkSubsystem) Name() string     { return "networking" }
func (s *networkSubsystem) OnAppStart()      { s.net.Start() }
func (s *networkSubsystem) OnAppPause()      { s.net.OnAppPause() }
func (s *networkSubsystem) OnAppResume()     { s.net.OnAppResume() }
func (s *networkSubsystem) OnAppShutdown()   { s.net.OnAppShutdown() }

type platformSubsystem struct {
	BaseSubsystem
	plat *platform.Platform
}

func (s *platformSubsystem) Name() string { return "platform" }
func (s *platformSubsystem) OnAppPause() {
	// Short sessions still get their usage data out.
	s.plat.Analytics().Submit()
}
func (s *platformSubsystem) OnAppShutdown() {
	s.plat.Analytics().Submit()
	s.plat.Music().Shutdown()
}
