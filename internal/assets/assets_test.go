package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/platform"
)

func startAssets(t *testing.T) *Assets {
	t.Helper()
	as := New(platform.New("emberline-test").FS())
	as.Loop().Start()
	t.Cleanup(as.Loop().Stop)
	return as
}

func TestLoadDeliversOnRequestedLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.dat")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	as := startAssets(t)
	target := dispatch.NewEventLoop("logic")
	target.Start()
	t.Cleanup(target.Stop)

	type result struct {
		data     []byte
		err      error
		onTarget bool
	}
	got := make(chan result, 1)
	as.Load(path, target, func(data []byte, err error) {
		got <- result{data, err, target.ThreadIsCurrent()}
	})

	select {
	case r := <-got:
		if r.err != nil {
			t.Fatalf("load failed: %v", r.err)
		}
		if string(r.data) != "payload" {
			t.Errorf("loaded %q, want payload", r.data)
		}
		if !r.onTarget {
			t.Error("result delivered off the requested loop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("load never delivered")
	}
}

func TestLoadMissingFileIsIOError(t *testing.T) {
	as := startAssets(t)
	target := dispatch.NewEventLoop("logic")
	target.Start()
	t.Cleanup(target.Stop)

	got := make(chan error, 1)
	as.Load(filepath.Join(t.TempDir(), "missing.dat"), target, func(_ []byte, err error) {
		got <- err
	})

	select {
	case err := <-got:
		if errs.KindOf(err) != errs.KindIO {
			t.Errorf("got kind %v, want io", errs.KindOf(err))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("load never delivered")
	}
}
