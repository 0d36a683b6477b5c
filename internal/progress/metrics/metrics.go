// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/aussiebroadwan/readprogress/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeAccepted labels updates that were logged.
const OutcomeAccepted = "accepted"

var (
	// UpdatesTotal counts progress updates by outcome: "accepted" or the
	// domain.Kind that rejected them.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_updates_total",
			Help: "Progress updates by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RecordUpdate counts an update. A nil err is an accepted update.
func RecordUpdate(err error) {
	UpdatesTotal.WithLabelValues(Outcome(err)).Inc()
}

// Outcome maps an update error onto its label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	return domain.KindOf(err).String()
}

func RecordLogin(ok bool) {
	if ok {
		LoginsTotal.WithLabelValues("success").Inc()
		return
	}
	LoginsTotal.WithLabelValues("failure").Inc()
}

// Instrument records request count and latency under a fixed route label so
// path parameters can never blow up label cardinality.
func Instrument(route string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &slogx.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

			next.ServeHTTP(rw, r)

			HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rw.Status)).Inc()
			HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
