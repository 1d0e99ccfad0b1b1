package platform

import (
	"os"
	"sync"
	"testing"

	"emberline/internal/errs"
)

func TestDirectoryAccessorsAreCachedAndStable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EMBERLINE_CONFIG_DIR", dir)

	p := New("emberline-test")

	first, err := p.ConfigDirectory()
	if err != nil {
		t.Fatalf("ConfigDirectory failed: %v", err)
	}
	if first != dir {
		t.Errorf("config dir %q, want %q", first, dir)
	}

	// Changing the env after first resolution must not change the
	// answer.
	t.Setenv("EMBERLINE_CONFIG_DIR", t.TempDir())
	second, _ := p.ConfigDirectory()
	if second != first {
		t.Errorf("cached dir changed: %q then %q", first, second)
	}
}

func TestDirectoryAccessorConcurrentCallersAgree(t *testing.T) {
	t.Setenv("EMBERLINE_CONFIG_DIR", t.TempDir())
	p := New("emberline-test")

	const callers = 16
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.ConfigDirectory()
		}(i)
	}
	wg.Wait()
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d saw %q, caller 0 saw %q", i, results[i], results[0])
		}
	}
}

func TestLowLevelConfigValueReadableBeforeFinalize(t *testing.T) {
	t.Setenv("EMBERLINE_TEST_BOOT", "early")
	p := New("emberline-test")

	if v := p.LowLevelConfigValue("EMBERLINE_TEST_BOOT", ""); v != "early" {
		t.Errorf("got %q, want early", v)
	}
	if v := p.LowLevelConfigValue("EMBERLINE_TEST_MISSING", "def"); v != "def" {
		t.Errorf("got %q, want the default", v)
	}
}

func TestFullEnvBeforeFinalizeIsFatal(t *testing.T) {
	p := New("emberline-test")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("early locale query did not panic")
		}
		if _, ok := r.(*errs.FatalError); !ok {
			t.Errorf("panicked with %T, want *errs.FatalError", r)
		}
	}()
	p.Locale()
}

func TestFullEnvAfterFinalize(t *testing.T) {
	p := New("emberline-test")
	p.FinalizeEnv()
	if p.Locale() == "" {
		t.Error("empty locale after finalize")
	}
	if p.OSVersion() == "" {
		t.Error("empty os version after finalize")
	}
}

func TestDefaultClipboardIsUnsupported(t *testing.T) {
	p := New("emberline-test")
	cb := p.Clipboard()
	if cb.IsSupported() {
		t.Fatal("default clipboard claims support")
	}
	if err := cb.SetText("x"); errs.KindOf(err) != errs.KindUnsupported {
		t.Errorf("SetText: got kind %v, want unsupported", errs.KindOf(err))
	}
	if _, err := cb.GetText(); errs.KindOf(err) != errs.KindUnsupported {
		t.Errorf("GetText: got kind %v, want unsupported", errs.KindOf(err))
	}
}

func TestMemoryClipboard(t *testing.T) {
	cb := &MemoryClipboard{}
	if _, err := cb.GetText(); errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("empty clipboard: got kind %v, want not-found", errs.KindOf(err))
	}
	cb.SetText("hello")
	if v, err := cb.GetText(); err != nil || v != "hello" {
		t.Errorf("got (%q, %v), want hello", v, err)
	}
}

func TestDeviceUUIDStableAndOrderIndependent(t *testing.T) {
	d := newStockDevice()
	if DeviceUUID(d) != DeviceUUID(d) {
		t.Error("device uuid not stable across calls")
	}
	if len(DeviceUUID(d)) != 32 {
		t.Errorf("device uuid length %d, want 32", len(DeviceUUID(d)))
	}
}

func TestRandomUUIDUnique(t *testing.T) {
	a, b := RandomUUID(), RandomUUID()
	if a == b {
		t.Error("two random uuids collided")
	}
	if len(a) != 36 {
		t.Errorf("uuid %q has length %d, want 36", a, len(a))
	}
}

func TestWithOptionsOverrideCapabilities(t *testing.T) {
	cb := &MemoryClipboard{}
	p := New("emberline-test", WithClipboard(cb))
	if p.Clipboard() != Clipboard(cb) {
		t.Error("clipboard option not applied")
	}
}

func TestAnalyticsSubmitDrainsPending(t *testing.T) {
	a := newPromAnalytics()
	a.IncrementCount("session_start")
	a.IncrementCountBy("shots_fired", 3)
	a.Submit()

	a.mu.Lock()
	pending := len(a.pending)
	a.mu.Unlock()
	if pending != 0 {
		t.Errorf("%d events still pending after submit", pending)
	}
}

func TestEnsureDirCreates(t *testing.T) {
	t.Setenv("EMBERLINE_CONFIG_DIR", "")
	base := t.TempDir()
	t.Setenv("EMBERLINE_CONFIG_DIR", base+"/nested/cfg")
	p := New("emberline-test")
	dir, err := p.ConfigDirectory()
	if err != nil {
		t.Fatalf("ConfigDirectory failed: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("config dir %q was not created", dir)
	}
}
