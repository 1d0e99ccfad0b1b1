package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"emberline/internal/config"
)

// stubEngine fakes the app for router tests.
type stubEngine struct {
	uuid     string
	messages []string
	applied  int
}

func (s *stubEngine) InstanceUUID() string      { return s.uuid }
func (s *stubEngine) ScreenMessages() []string  { return s.messages }
func (s *stubEngine) ScreenMessage(msg string)  { s.messages = append(s.messages, msg) }
func (s *stubEngine) ApplyAppConfig()           { s.applied++ }

func newTestServer(t *testing.T) (*httptest.Server, *stubEngine, *config.Store) {
	t.Helper()
	engine := &stubEngine{uuid: "test-instance"}
	store, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(RouterConfig{
		Engine: engine,
		Config: store,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, engine, store
}

func TestStatusEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["instance"] != "test-instance" {
		t.Errorf("instance %v, want test-instance", body["instance"])
	}
	if body["config_dirty"] != false {
		t.Errorf("config_dirty %v, want false", body["config_dirty"])
	}
}

func TestConfigEndpointReflectsStore(t *testing.T) {
	ts, _, store := newTestServer(t)
	store.Set("player_name", "yori")

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["player_name"] != "yori" {
		t.Errorf("player_name %v, want yori", body["player_name"])
	}
}

func TestConfigCommitEndpoint(t *testing.T) {
	ts, engine, store := newTestServer(t)
	store.Set("gen", 1)

	resp, err := http.Post(ts.URL+"/api/config/commit", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	if store.Dirty() {
		t.Error("store still dirty after commit endpoint")
	}
	if engine.applied != 1 {
		t.Errorf("config applied %d times, want 1", engine.applied)
	}
}

func TestMessageEndpoints(t *testing.T) {
	ts, engine, _ := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"message": "greetings"})
	resp, err := http.Post(ts.URL+"/api/message", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status %d, want 202", resp.StatusCode)
	}
	if len(engine.messages) != 1 || engine.messages[0] != "greetings" {
		t.Errorf("engine got messages %v", engine.messages)
	}

	resp, err = http.Get(ts.URL + "/api/messages")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var msgs []string
	json.NewDecoder(resp.Body).Decode(&msgs)
	if len(msgs) != 1 || msgs[0] != "greetings" {
		t.Errorf("got messages %v, want [greetings]", msgs)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/message", "application/json",
		bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _, _ := newTestServer(t)
	for _, path := range []string{"/health", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	engine := &stubEngine{uuid: "x"}
	store, _ := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	router := NewRouter(RouterConfig{
		Engine: engine,
		Config: store,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	var rejected int
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			rejected++
		}
	}
	if rejected == 0 {
		t.Error("burst of requests was never rate limited")
	}
}
