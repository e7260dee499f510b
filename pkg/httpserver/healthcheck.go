package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// Check is a named dependency probe.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler answers liveness when no checks are given and readiness
// otherwise. Every check runs with the request context bounded by timeout;
// any failure turns the response into 503.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		code := http.StatusOK

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			resp.Checks = make(map[string]string, len(checks))
			for _, c := range checks {
				if err := c.Probe(ctx); err != nil {
					log.ErrorContext(ctx, "readiness check failed",
						logger.Component(c.Name),
						logger.Error(err),
					)
					resp.Checks[c.Name] = "failed"
					resp.Status = "unavailable"
					code = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[c.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
