package platform

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"emberline/internal/logging"
)

// Analytics is the usage-analytics capability. Counts accumulate
// locally and go out in batches: Submit flushes whatever is pending,
// and the app also submits on pause so short sessions are not lost.
type Analytics interface {
	IncrementCount(name string)
	IncrementCountBy(name string, n int)
	SetScreen(screen string)
	Submit()
}

// Bounded label values only: name/screen come from engine code, never
// from user input.
var (
	analyticsCounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_analytics_count_total",
		Help: "Analytics counts by event name",
	}, []string{"name"})

	analyticsScreens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_analytics_screen_total",
		Help: "Analytics screen visits",
	}, []string{"screen"})

	analyticsSubmits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_analytics_submit_total",
		Help: "Analytics batch submissions",
	})
)

type promAnalytics struct {
	mu      sync.Mutex
	pending map[string]int
	screen  string
}

func newPromAnalytics() *promAnalytics {
	return &promAnalytics{pending: make(map[string]int)}
}

func (a *promAnalytics) IncrementCount(name string) { a.IncrementCountBy(name, 1) }

func (a *promAnalytics) IncrementCountBy(name string, n int) {
	a.mu.Lock()
	a.pending[name] += n
	a.mu.Unlock()
}

func (a *promAnalytics) SetScreen(screen string) {
	a.mu.Lock()
	if screen != a.screen {
		a.screen = screen
		analyticsScreens.WithLabelValues(screen).Inc()
	}
	a.mu.Unlock()
}

func (a *promAnalytics) Submit() {
	a.mu.Lock()
	pending := a.pending
	a.pending = make(map[string]int)
	a.mu.Unlock()

	for name, n := range pending {
		analyticsCounts.WithLabelValues(name).Add(float64(n))
	}
	analyticsSubmits.Inc()
	if len(pending) > 0 {
		logging.For("platform").Debug("analytics submitted",
			"events", len(pending))
	}
}
