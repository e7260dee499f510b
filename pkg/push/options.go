package push

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) HTTPOption {
	return func(p *HTTPProvider) {
		p.apiKey = key
	}
}

// WithTimeout bounds a single provider request. Default is 5 seconds.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithCircuitBreaker replaces the default breaker. Pass nil to disable it.
func WithCircuitBreaker(cb *CircuitBreaker) HTTPOption {
	return func(p *HTTPProvider) {
		p.breaker = cb
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(p *HTTPProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}
