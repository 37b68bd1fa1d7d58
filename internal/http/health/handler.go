package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency. A nil error means healthy.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Response is the payload for the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler reports "healthy" when every check passes, otherwise
// "unhealthy" with status 503. Check errors are not echoed to callers.
func Handler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Status: "healthy"}
		status := http.StatusOK

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()

			resp.Checks = make(map[string]string, len(checks))
			for _, c := range checks {
				if err := c.Fn(ctx); err != nil {
					resp.Checks[c.Name] = "unavailable"
					resp.Status = "unhealthy"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[c.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
