package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID names a Store counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts Login and successful SignIn calls.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected SignIn calls.
	MetricLoginFailure
	// MetricLoginInProgress counts SignIn calls refused while another was in flight.
	MetricLoginInProgress
	// MetricLogout counts Logout calls.
	MetricLogout
	// MetricLogoutBackendFailure counts logouts whose backend notification failed.
	MetricLogoutBackendFailure
	// MetricRestoreSuccess counts restores that ended authenticated.
	MetricRestoreSuccess
	// MetricRestoreAnonymous counts restores that ended anonymous.
	MetricRestoreAnonymous
	// MetricRestoreSkipped counts restores settled by a public route.
	MetricRestoreSkipped
	// MetricRefreshSuccess counts reissues triggered by a 401.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed reissues triggered by a 401.
	MetricRefreshFailure
	// MetricUnauthorized counts sessions cleared by an unrecoverable 401.
	MetricUnauthorized
	// MetricMirrorFailure counts token mirror read or write failures.
	MetricMirrorFailure
	// MetricRequest counts completed fetch-client round trips.
	MetricRequest
	// MetricRequestFailure counts round trips that failed or returned >= 400.
	MetricRequestFailure
	// MetricRequestLatency is the round-trip latency histogram.
	MetricRequestLatency
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:         "login_success",
	MetricLoginFailure:         "login_failure",
	MetricLoginInProgress:      "login_in_progress",
	MetricLogout:               "logout",
	MetricLogoutBackendFailure: "logout_backend_failure",
	MetricRestoreSuccess:       "restore_success",
	MetricRestoreAnonymous:     "restore_anonymous",
	MetricRestoreSkipped:       "restore_skipped",
	MetricRefreshSuccess:       "refresh_success",
	MetricRefreshFailure:       "refresh_failure",
	MetricUnauthorized:         "unauthorized",
	MetricMirrorFailure:        "mirror_failure",
	MetricRequest:              "request",
	MetricRequestFailure:       "request_failure",
	MetricRequestLatency:       "request_latency",
}

// String returns the snake_case metric name used by exporters.
func (id MetricID) String() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a set of lock-free counters and one latency histogram.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram for id. Only MetricRequestLatency
// carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

// HistogramBounds returns the inclusive upper bounds, in milliseconds, of
// every bucket but the last.
func HistogramBounds() []float64 {
	return []float64{5, 10, 25, 50, 100, 250, 500}
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

// observeRequest adapts Metrics to the fetch client's observer hook.
func (m *Metrics) observeRequest(_, _ string, status int, elapsed time.Duration) {
	m.Inc(MetricRequest)
	if status == 0 || status >= 400 {
		m.Inc(MetricRequestFailure)
	}
	m.Observe(MetricRequestLatency, elapsed)
}
