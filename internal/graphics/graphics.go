// Package graphics owns the render loop and screen state. The engine
// proper only pushes state at it; actual drawing happens on the
// graphics loop.
package graphics

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/logging"
)

var renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "engine_render_duration_seconds",
	Help:    "Time spent rendering a frame",
	Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
})

// Graphics renders frames on its own loop.
type Graphics struct {
	loop *dispatch.EventLoop
	log  *logging.Logger

	mu     sync.Mutex
	width  float64
	height float64

	// Last rendered frame, for screenshots. Graphics loop only.
	lastFrame image.Image

	onSizeChange func(w, h float64)

	vsync bool
	frame uint64
}

// New creates the graphics subsystem.
func New(width, height float64) *Graphics {
	return &Graphics{
		loop:   dispatch.NewEventLoop("graphics"),
		log:    logging.For("graphics"),
		width:  width,
		height: height,
	}
}

// Loop returns the graphics event loop.
func (g *Graphics) Loop() *dispatch.EventLoop { return g.loop }

// ScreenSize returns the current screen dimensions. Safe from any
// goroutine.
func (g *Graphics) ScreenSize() (w, h float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

// SetOnSizeChange installs the size-change fan-out hook. Set once at
// app construction.
func (g *Graphics) SetOnSizeChange(fn func(w, h float64)) {
	g.onSizeChange = fn
}

// SetScreenSize records a new screen size and fans the change out.
// Callable from any goroutine (window-system callbacks arrive on the
// main thread).
func (g *Graphics) SetScreenSize(w, h float64) {
	g.mu.Lock()
	changed := w != g.width || h != g.height
	g.width, g.height = w, h
	g.mu.Unlock()
	if changed && g.onSizeChange != nil {
		g.onSizeChange(w, h)
	}
}

// ApplyAppConfig picks up render settings from the config snapshot.
func (g *Graphics) ApplyAppConfig(values map[string]any) {
	if v, ok := values["vsync"].(bool); ok {
		g.vsync = v
	}
	g.log.Debug("config applied", "vsync", g.vsync)
}

// RenderFrame draws one frame. Graphics loop only.
func (g *Graphics) RenderFrame(draw func(dc *gg.Context)) {
	g.loop.AssertThreadIsCurrent()
	start := time.Now()

	w, h := g.ScreenSize()
	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	if draw != nil {
		draw(dc)
	}
	g.lastFrame = dc.Image()
	g.frame++

	renderDuration.Observe(time.Since(start).Seconds())
}

// Screenshot writes the most recent frame as a PNG into dir and
// returns the written path. Graphics loop only.
func (g *Graphics) Screenshot(dir string) (string, error) {
	g.loop.AssertThreadIsCurrent()
	if g.lastFrame == nil {
		return "", errs.New(errs.KindNotFound, "no frame rendered yet")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.KindIO, err, "creating screenshot dir")
	}
	path := filepath.Join(dir,
		fmt.Sprintf("shot_%d_%d.png", time.Now().Unix(), g.frame))
	if err := gg.SavePNG(path, g.lastFrame); err != nil {
		return "", errs.Wrap(errs.KindIO, err, "writing screenshot")
	}
	g.log.Info("screenshot saved", "path", path)
	return path, nil
}

// FrameCount returns how many frames have been rendered. Graphics loop
// only.
func (g *Graphics) FrameCount() uint64 {
	g.loop.AssertThreadIsCurrent()
	return g.frame
}
