package push_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
)

func testMessage(t *testing.T) push.Message {
	t.Helper()
	evt, err := event.New(event.KindOrderAssigned, event.Payload{
		Title: "New order",
		Data:  map[string]any{"order_id": "o-1"},
	})
	require.NoError(t, err)
	return push.NewMessage("tok-1", evt)
}

func TestHTTPProvider_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantNoErr bool
	}{
		{name: "accepted", status: http.StatusOK, wantNoErr: true},
		{name: "accepted no content", status: http.StatusNoContent, wantNoErr: true},
		{name: "gone token", status: http.StatusGone, wantErr: push.ErrInvalidToken},
		{name: "unknown token", status: http.StatusNotFound, wantErr: push.ErrInvalidToken},
		{name: "bad request with invalid_token", status: http.StatusBadRequest, body: `{"error":"invalid_token"}`, wantErr: push.ErrInvalidToken},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"bad_payload"}`, wantErr: push.ErrTransient},
		{name: "server error", status: http.StatusInternalServerError, wantErr: push.ErrTransient},
		{name: "throttled", status: http.StatusTooManyRequests, wantErr: push.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got push.Message
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := push.NewHTTPProvider(srv.URL, push.WithAPIKey("secret"), push.WithCircuitBreaker(nil))
			msg := testMessage(t)
			err := p.Send(context.Background(), msg)

			if tt.wantNoErr {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, msg.Token, got.Token)
			assert.Equal(t, msg.EventID, got.EventID)
			assert.Equal(t, "order_assigned", got.Kind)
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := push.NewHTTPProvider(srv.URL, push.WithTimeout(20*time.Millisecond), push.WithCircuitBreaker(nil))
	err := p.Send(context.Background(), testMessage(t))

	require.ErrorIs(t, err, push.ErrTimeout)
	assert.ErrorIs(t, err, push.ErrTransient)
	assert.False(t, push.IsInvalidToken(err))
}

func TestHTTPProvider_CircuitOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := push.NewHTTPProvider(srv.URL, push.WithCircuitBreaker(push.NewCircuitBreaker(2, 1, time.Hour)))
	msg := testMessage(t)

	assert.ErrorIs(t, p.Send(context.Background(), msg), push.ErrTransient)
	assert.ErrorIs(t, p.Send(context.Background(), msg), push.ErrTransient)
	assert.ErrorIs(t, p.Send(context.Background(), msg), push.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPProvider_InvalidTokenKeepsCircuitClosed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	cb := push.NewCircuitBreaker(1, 1, time.Hour)
	p := push.NewHTTPProvider(srv.URL, push.WithCircuitBreaker(cb))

	for range 3 {
		assert.ErrorIs(t, p.Send(context.Background(), testMessage(t)), push.ErrInvalidToken)
	}
	assert.Equal(t, push.CircuitClosed, cb.State())
}

func TestDisabledProvider(t *testing.T) {
	t.Parallel()

	err := push.DisabledProvider{}.Send(context.Background(), push.Message{})
	assert.ErrorIs(t, err, push.ErrProviderDisabled)
	assert.False(t, push.IsInvalidToken(err))
}
