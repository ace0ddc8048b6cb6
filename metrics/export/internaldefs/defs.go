package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// EventsDroppedName is the counter for events lost to dispatcher backpressure.
const EventsDroppedName = "gosession_events_dropped_total"

// EventsDroppedHelp describes EventsDroppedName.
const EventsDroppedHelp = "Session events dropped due to dispatcher backpressure."

var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Sessions established by Login or SignIn."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Rejected or failed sign-in attempts."},
	{ID: goSession.MetricLoginInProgress, Name: "gosession_login_in_progress_total", Help: "Sign-in attempts refused while another was in flight."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logout operations."},
	{ID: goSession.MetricLogoutBackendFailure, Name: "gosession_logout_backend_failure_total", Help: "Logouts whose backend notification failed."},
	{ID: goSession.MetricRestoreSuccess, Name: "gosession_restore_success_total", Help: "Restores that ended authenticated."},
	{ID: goSession.MetricRestoreAnonymous, Name: "gosession_restore_anonymous_total", Help: "Restores that ended anonymous."},
	{ID: goSession.MetricRestoreSkipped, Name: "gosession_restore_skipped_total", Help: "Restores settled by a public route."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Token reissues triggered by a 401."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed token reissues triggered by a 401."},
	{ID: goSession.MetricUnauthorized, Name: "gosession_unauthorized_total", Help: "Sessions cleared by an unrecoverable 401."},
	{ID: goSession.MetricMirrorFailure, Name: "gosession_mirror_failure_total", Help: "Token mirror read or write failures."},
	{ID: goSession.MetricRequest, Name: "gosession_requests_total", Help: "Fetch client round trips."},
	{ID: goSession.MetricRequestFailure, Name: "gosession_request_failures_total", Help: "Round trips that failed or returned a status >= 400."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRequestLatency, Name: "gosession_request_latency_seconds", Help: "Fetch client round-trip latency."},
}

// HistogramBounds are the bucket upper bounds in seconds; the last bucket is
// +Inf and has no entry.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten buckets into gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
