package observability

import (
	"encoding/json"
	"net/http"
)

// ReadyCheck reports whether a dependency is ready to serve.
type ReadyCheck func() error

type healthStatus struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports process liveness. It always returns 200 while the
// process is up.
func HealthHandler(serviceName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealthJSON(w, http.StatusOK, healthStatus{
			Status:  "ok",
			Service: serviceName,
		})
	})
}

// ReadyHandler runs the named checks and reports 503 when any fails.
func ReadyHandler(serviceName string, checks map[string]ReadyCheck) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:  "ready",
			Service: serviceName,
			Checks:  make(map[string]string, len(checks)),
		}

		code := http.StatusOK
		for name, check := range checks {
			if err := check(); err != nil {
				status.Status = "not_ready"
				status.Checks[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = "ok"
		}

		writeHealthJSON(w, code, status)
	})
}

func writeHealthJSON(w http.ResponseWriter, code int, status healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	// The status line is already committed, nothing useful to do on error.
	_ = json.NewEncoder(w).Encode(status)
}
