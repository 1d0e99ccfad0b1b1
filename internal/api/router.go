// Package api is the localhost debug surface: engine status, config
// inspection, metrics, profiling, and a live log tail. It is a tooling
// aid, never a gameplay path.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emberline/internal/config"
)

// EngineInterface is what the debug surface needs from the app. Kept
// minimal so tests can stub it without booting the engine.
type EngineInterface interface {
	InstanceUUID() string
	ScreenMessages() []string
	ScreenMessage(msg string)
	ApplyAppConfig()
}

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	Engine EngineInterface
	Config *config.Store

	// LogHub is optional; when set, /debug/logs serves a websocket
	// tail.
	LogHub *LogHub

	// RateLimitConfig overrides the default limiter settings (tests
	// crank it up).
	RateLimitConfig *RateLimitConfig

	DisableLogging bool
}

type routerHandlers struct {
	engine  EngineInterface
	cfg     *config.Store
	started time.Time
}

// NewRouter builds the debug router. Pure: no goroutines, no
// listeners, safe under httptest.
func NewRouter(rc RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !rc.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rlCfg := DefaultRateLimitConfig
	if rc.RateLimitConfig != nil {
		rlCfg = *rc.RateLimitConfig
	}
	r.Use(NewIPRateLimiter(rlCfg).Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{engine: rc.Engine, cfg: rc.Config, started: time.Now()}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Get("/config", h.handleGetConfig)
		r.Post("/config/commit", h.handleCommitConfig)
		r.Get("/messages", h.handleGetMessages)
		r.Post("/message", h.handlePostMessage)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/debug", func(r chi.Router) {
		r.HandleFunc("/pprof/", pprof.Index)
		r.HandleFunc("/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/pprof/profile", pprof.Profile)
		r.HandleFunc("/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/pprof/trace", pprof.Trace)
		if rc.LogHub != nil {
			r.Get("/logs", rc.LogHub.HandleTail)
		}
	})

	return r
}

func (h *routerHandlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"instance":       h.engine.InstanceUUID(),
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"config_dirty":   h.cfg.Dirty(),
	})
}

func (h *routerHandlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cfg.Snapshot())
}

func (h *routerHandlers) handleCommitConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.cfg.Commit(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.ApplyAppConfig()
	writeJSON(w, map[string]any{"committed": true})
}

func (h *routerHandlers) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.ScreenMessages())
}

func (h *routerHandlers) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.engine.ScreenMessage(body.Message)
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
