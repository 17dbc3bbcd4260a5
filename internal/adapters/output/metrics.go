package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// ScanMetrics collects per-run Prometheus metrics. A batch run has no
// scrape endpoint, so the registry is private and written once to a
// node_exporter textfile at the end of the run.
type ScanMetrics struct {
	registry *prometheus.Registry

	lines          *prometheus.CounterVec
	actions        *prometheus.CounterVec
	violations     prometheus.Counter
	addresses      prometheus.Gauge
	scanDuration   prometheus.Histogram
	lastRunSeconds prometheus.Gauge

	mu sync.Mutex
}

func NewScanMetrics(namespace string) *ScanMetrics {
	if namespace == "" {
		namespace = "pyrewall"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &ScanMetrics{registry: reg}

	m.lines = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_total",
		Help:      "Log lines read, by extraction result",
	}, []string{"result"})

	m.actions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "block_actions_total",
		Help:      "Block actions by outcome and address family",
	}, []string{"outcome", "family"})

	m.violations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "violations_total",
		Help:      "Addresses that exceeded the burst threshold",
	})

	m.addresses = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unique_addresses",
		Help:      "Distinct source addresses seen in the last run",
	})

	m.scanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Time spent scanning all address timelines",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	m.lastRunSeconds = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})

	return m
}

func (m *ScanMetrics) ObserveLine(result string) {
	m.lines.WithLabelValues(result).Inc()
}

func (m *ScanMetrics) ObserveAction(result domain.ActionResult) {
	m.violations.Inc()
	family := string(result.Action.Family)
	if family == "" {
		family = "unknown"
	}
	m.actions.WithLabelValues(string(result.Outcome), family).Inc()
}

func (m *ScanMetrics) ObserveScan(addresses int, elapsed time.Duration) {
	m.addresses.Set(float64(addresses))
	m.scanDuration.Observe(elapsed.Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile stamps the run time and writes every metric to path in the
// text exposition format. The file is replaced atomically.
func (m *ScanMetrics) WriteTextfile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRunSeconds.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Metrics textfile written")
	return nil
}
