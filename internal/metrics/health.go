package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StatusProvider reports the scheduler state and its last successful cycle.
type StatusProvider interface {
	Status() (state string, lastSuccess time.Time)
}

// Health is the /health response body.
type Health struct {
	Status      string     `json:"status"` // ok, starting, stale
	State       string     `json:"state"`
	LastSuccess *time.Time `json:"last_success"`
	AgeSeconds  *float64   `json:"age_seconds"`
}

// HealthHandler reports ok while the last success is newer than staleAfter.
// A stale poller answers 503.
func HealthHandler(p StatusProvider, staleAfter time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, last := p.Status()
		h := Health{State: state}

		code := http.StatusOK
		switch {
		case last.IsZero():
			h.Status = "starting"
		default:
			age := time.Since(last)
			secs := age.Seconds()
			h.LastSuccess = &last
			h.AgeSeconds = &secs
			h.Status = "ok"
			if age > staleAfter {
				h.Status = "stale"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(h)
	})
}

// NewServer builds the HTTP server exposing metricsPath and /health.
func NewServer(port int, metricsPath string, m *Metrics, health http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, m.Handler())
	mux.Handle("/health", health)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
