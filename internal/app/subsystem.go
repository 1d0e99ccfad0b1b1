package app

// Subsystem is the lifecycle surface every engine subsystem exposes.
// The app fans lifecycle events out across its ordered subsystem list;
// each implementation forwards onto its own loop as needed.
type Subsystem interface {
	Name() string
	OnAppStart()
	OnAppPause()
	OnAppResume()
	OnAppShutdown()
	ApplyAppConfig(values map[string]any)
	OnScreenSizeChange(w, h float64)
}

// BaseSubsystem provides no-op lifecycle methods so subsystems only
// spell out the events they care about.
type BaseSubsystem struct{}

func (BaseSubsystem) OnAppStart()                      {}
func (BaseSubsystem) OnAppPause()                      {}
func (BaseSubsystem) OnAppResume()                     {}
func (BaseSubsystem) OnAppShutdown()                   {}
func (BaseSubsystem) ApplyAppConfig(map[string]any)    {}
func (BaseSubsystem) OnScreenSizeChange(w, h float64)  {}
