// Package metrics defines the custom Prometheus metrics of the back-office
// dashboard. Request-level HTTP metrics come from the echoprometheus
// middleware; these cover what happens behind a request.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Table metrics ─────────────────────────────────────────────────────────────

// TableOperationsTotal counts table mutations.
// Labels:
//   - entity: company, department, role, user, page
//   - op: create, update, delete
//   - outcome: success or the error class (validation, upstream, in_flight, ...)
var TableOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_operations_total",
		Help:      "Total number of table mutations, by entity, operation and outcome.",
	},
	[]string{"entity", "op", "outcome"},
)

// DuplicateSubmissionsTotal counts submissions refused because an identical
// one was still in flight.
var DuplicateSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_submissions_total",
		Help:      "Total number of submissions rejected while an identical one was in flight.",
	},
	[]string{"entity"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsExpiredTotal counts sessions wiped after the lending API answered 401.
var SessionsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions ended because the lending API rejected the token.",
	},
)

// ── Review metrics ────────────────────────────────────────────────────────────

// ReviewDecisionsTotal counts approve, reject and hold decisions.
var ReviewDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_decisions_total",
		Help:      "Total number of loan review decisions, by action.",
	},
	[]string{"action"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures calls to the lending API.
// Labels:
//   - method: HTTP method
//   - route: path template, e.g. "/departments/{id}"
//   - status: response status, "0" when no response arrived
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of lending API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// ObserveUpstream matches restapi.Observer.
func ObserveUpstream(method, route string, status int, elapsed time.Duration) {
	UpstreamRequestDuration.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// RegisterWorkspaceGauge exposes the number of live workspaces. Call once.
func RegisterWorkspaceGauge(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces",
			Help:      "Number of session workspaces currently held in memory.",
		},
		func() float64 { return float64(count()) },
	)
}
