package api

import (
	"net/http"
	"os"
	"time"

	"emberline/internal/logging"
)

// DefaultListenAddr binds localhost only; the pprof endpoints make
// external exposure a denial-of-service hazard.
const DefaultListenAddr = "127.0.0.1:6060"

// StartDebugServer runs the debug surface in the background. The addr
// is forced to localhost unless EMBERLINE_DEBUG_EXTERNAL=true.
func StartDebugServer(addr string, rc RouterConfig) {
	log := logging.For("api")

	if addr == "" {
		addr = DefaultListenAddr
	}
	if addr != DefaultListenAddr && os.Getenv("EMBERLINE_DEBUG_EXTERNAL") != "true" {
		log.Warn("debug server forced to localhost", "requested", addr)
		addr = DefaultListenAddr
	}

	if rc.LogHub != nil {
		logging.TeeOutput(rc.LogHub)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(rc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		log.Info("debug server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("debug server stopped", "err", err)
		}
	}()
}
