package collapse

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwebster45206/branch-engine/pkg/branch"
)

// Failure reasons for collapse metrics.
const (
	ReasonStale    = "stale"
	ReasonApply    = "apply"
	ReasonRejected = "rejected"
)

// CollapseTotal counts committed collapses.
// Use RegisterMetrics to register this with a Prometheus registry.
var CollapseTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "branch_engine_collapses_total",
		Help: "Total number of committed branch collapses",
	},
	[]string{"category", "twist"},
)

// CollapseFailures counts collapses that did not commit.
var CollapseFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "branch_engine_collapse_failures_total",
		Help: "Total number of branch collapses that failed",
	},
	[]string{"reason"},
)

// CollapseDuration observes collapse wall time.
var CollapseDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "branch_engine_collapse_duration_seconds",
		Help:    "Branch collapse duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers the collapse collectors with reg. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CollapseTotal)
	reg.MustRegister(CollapseFailures)
	reg.MustRegister(CollapseDuration)
}

// Metrics aggregates collapse statistics. Safe for concurrent use by
// sessions running in parallel.
type Metrics struct {
	collapses  atomic.Int64
	rolled     atomic.Int64
	twists     atomic.Int64
	stale      atomic.Int64
	failed     atomic.Int64
	rejected   atomic.Int64
	totalNanos atomic.Int64
	byCategory map[branch.Category]*atomic.Int64
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	m := &Metrics{byCategory: make(map[branch.Category]*atomic.Int64, len(branch.Categories))}
	for _, c := range branch.Categories {
		m.byCategory[c] = new(atomic.Int64)
	}
	return m
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Collapses     int64                     `json:"collapses"`
	Rolled        int64                     `json:"rolled"`
	TwistsApplied int64                     `json:"twists_applied"`
	Stale         int64                     `json:"stale"`
	ApplyFailures int64                     `json:"apply_failures"`
	Rejected      int64                     `json:"rejected"`
	ByCategory    map[branch.Category]int64 `json:"by_category"`
	TotalTime     time.Duration             `json:"total_time"`
}

// AverageTime returns the mean duration of committed collapses.
func (s MetricsSnapshot) AverageTime() time.Duration {
	if s.Collapses == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Collapses)
}

func (m *Metrics) recordCollapse(c branch.Category, rolled, twist bool, d time.Duration) {
	m.collapses.Add(1)
	if counter, ok := m.byCategory[c]; ok {
		counter.Add(1)
	}
	if rolled {
		m.rolled.Add(1)
	}
	if twist {
		m.twists.Add(1)
	}
	m.totalNanos.Add(int64(d))

	twistLabel := "false"
	if twist {
		twistLabel = "true"
	}
	CollapseTotal.WithLabelValues(string(c), twistLabel).Inc()
	CollapseDuration.Observe(d.Seconds())
}

func (m *Metrics) recordFailure(reason string) {
	switch reason {
	case ReasonStale:
		m.stale.Add(1)
	case ReasonApply:
		m.failed.Add(1)
	case ReasonRejected:
		m.rejected.Add(1)
	}
	CollapseFailures.WithLabelValues(reason).Inc()
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Collapses:     m.collapses.Load(),
		Rolled:        m.rolled.Load(),
		TwistsApplied: m.twists.Load(),
		Stale:         m.stale.Load(),
		ApplyFailures: m.failed.Load(),
		Rejected:      m.rejected.Load(),
		TotalTime:     time.Duration(m.totalNanos.Load()),
		ByCategory:    make(map[branch.Category]int64, len(m.byCategory)),
	}
	for c, counter := range m.byCategory {
		s.ByCategory[c] = counter.Load()
	}
	return s
}
