package receiver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AcksPath is the server route acknowledgements are posted to.
const AcksPath = "/v1/acks"

// HTTPAcknowledger posts acknowledgements to the notification service with
// the recipient's session token.
type HTTPAcknowledger struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPAcknowledger creates an acknowledger for the service at baseURL.
func NewHTTPAcknowledger(baseURL, sessionToken string, client *http.Client) *HTTPAcknowledger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPAcknowledger{
		url:    strings.TrimRight(baseURL, "/") + AcksPath,
		token:  sessionToken,
		client: client,
	}
}

func (a *HTTPAcknowledger) Acknowledge(ctx context.Context, eventID string) error {
	body, err := json.Marshal(map[string]string{"event_id": eventID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAckFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAckFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrAckFailed, resp.StatusCode)
	}

	// An empty or unreadable body counts as recorded.
	var result ackResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&result); err == nil && result.Retry {
		return ErrAckNotRecorded
	}
	return nil
}

type ackResult struct {
	Recorded bool `json:"recorded"`
	Retry    bool `json:"retry"`
}
