package graphics

import (
	"os"
	"testing"

	"github.com/fogleman/gg"
)

func startGraphics(t *testing.T) *Graphics {
	t.Helper()
	g := New(320, 240)
	g.Loop().Start()
	t.Cleanup(g.Loop().Stop)
	return g
}

func TestSetScreenSizeFansOutOnlyOnChange(t *testing.T) {
	g := New(320, 240)

	var changes int
	g.SetOnSizeChange(func(w, h float64) { changes++ })

	g.SetScreenSize(320, 240)
	if changes != 0 {
		t.Error("unchanged size still fanned out")
	}
	g.SetScreenSize(640, 480)
	if changes != 1 {
		t.Errorf("got %d fan-outs, want 1", changes)
	}
	if w, h := g.ScreenSize(); w != 640 || h != 480 {
		t.Errorf("screen size (%v, %v), want (640, 480)", w, h)
	}
}

func TestRenderFrameAndScreenshot(t *testing.T) {
	g := startGraphics(t)
	dir := t.TempDir()

	var path string
	var err error
	g.Loop().PushCallSynchronous(func() {
		g.RenderFrame(func(dc *gg.Context) {
			dc.SetRGB(1, 0, 0)
			dc.DrawCircle(160, 120, 40)
			dc.Fill()
		})
		path, err = g.Screenshot(dir)
	})
	if err != nil {
		t.Fatalf("screenshot failed: %v", err)
	}
	fi, statErr := os.Stat(path)
	if statErr != nil {
		t.Fatalf("screenshot file missing: %v", statErr)
	}
	if fi.Size() == 0 {
		t.Error("screenshot file is empty")
	}
}

func TestScreenshotWithoutFrameIsError(t *testing.T) {
	g := startGraphics(t)
	var err error
	g.Loop().PushCallSynchronous(func() {
		_, err = g.Screenshot(t.TempDir())
	})
	if err == nil {
		t.Error("screenshot before any frame succeeded")
	}
}

func TestFrameCountAdvances(t *testing.T) {
	g := startGraphics(t)
	g.Loop().PushCallSynchronous(func() {
		g.RenderFrame(nil)
		g.RenderFrame(nil)
		if got := g.FrameCount(); got != 2 {
			t.Errorf("frame count %d, want 2", got)
		}
	})
}
