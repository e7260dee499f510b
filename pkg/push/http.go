package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// HTTPProvider posts messages as JSON to a push gateway endpoint.
//
// Response classification:
//   - 2xx: accepted
//   - 404, 410, or 400 with "invalid_token" in the body: ErrInvalidToken
//   - anything else, network errors and timeouts: transient
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	timeout  time.Duration
	breaker  *CircuitBreaker
	logger   *slog.Logger
}

// NewHTTPProvider creates a provider posting to endpoint.
func NewHTTPProvider(endpoint string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint: endpoint,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 5 * time.Second,
		breaker: NewCircuitBreaker(5, 2, 30*time.Second),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPProvider) Send(ctx context.Context, msg Message) error {
	if p.breaker != nil && !p.breaker.Allow() {
		return ErrCircuitOpen
	}

	err := p.send(ctx, msg)

	if p.breaker != nil {
		switch {
		case err == nil, errors.Is(err, ErrInvalidToken):
			p.breaker.RecordSuccess()
		default:
			p.breaker.RecordFailure()
		}
	}
	if err != nil && !errors.Is(err, ErrInvalidToken) {
		p.logger.WarnContext(ctx, "push provider request failed",
			logger.EventID(msg.EventID),
			logger.Error(err),
		)
	}
	return err
}

func (p *HTTPProvider) send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dispatchkit-push/1.0")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return errors.Join(ErrTransient, ErrTimeout, err)
		}
		return errors.Join(ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if isInvalidTokenResponse(resp.StatusCode, body) {
		return ErrInvalidToken
	}

	detail := strings.ReplaceAll(string(body), "\n", " ")
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, detail)
}

func isInvalidTokenResponse(status int, body []byte) bool {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return true
	case http.StatusBadRequest:
		return bytes.Contains(body, []byte("invalid_token"))
	}
	return false
}
