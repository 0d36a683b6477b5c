package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/state"
	"github.com/aussiebroadwan/readprogress/internal/progress/store"
	"github.com/aussiebroadwan/readprogress/pkg/httpx"
	"github.com/aussiebroadwan/readprogress/pkg/progresssdk"
)

// LivezHandler reports that the process is up. It never fails.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, progresssdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler reports 503 when the identity store is unreachable or the
// state container has been poisoned.
func ReadyzHandler(startTime time.Time, version string, st store.Store, c *state.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &progresssdk.HealthChecks{Store: "ok", State: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if c.Poisoned() {
			checks.State = "error: poisoned"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, progresssdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
