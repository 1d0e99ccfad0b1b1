// Package assets owns the asset-loading thread. Loads run on a
// dedicated serial loop so disk stalls never block the logic or
// graphics loops; results are delivered back on a loop the caller
// names.
package assets

import (
	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/logging"
	"emberline/internal/platform"
)

// Assets is the asset-loading subsystem.
type Assets struct {
	loop *dispatch.EventLoop
	fs   platform.FileSystem
	log  *logging.Logger
}

// New builds the subsystem; its loop starts with the app.
func New(fs platform.FileSystem) *Assets {
	return &Assets{
		loop: dispatch.NewEventLoop("assets"),
		fs:   fs,
		log:  logging.For("assets"),
	}
}

// Loop returns the asset loop.
func (as *Assets) Loop() *dispatch.EventLoop { return as.loop }

// Load reads path on the asset loop and hands (data, err) to done on
// deliverTo. Callable from any goroutine.
func (as *Assets) Load(path string, deliverTo *dispatch.EventLoop, done func([]byte, error)) {
	as.loop.PushCall(func() {
		data, err := as.fs.ReadFile(path)
		if err != nil {
			err = errs.Wrap(errs.KindIO, err, "loading asset")
			as.log.Error("asset load failed", "path", path, "err", err)
		}
		deliverTo.PushCall(func() { done(data, err) })
	})
}
