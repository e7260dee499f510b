package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
)

func waitReady(t *testing.T, srv *httpserver.Server) {
	t.Helper()
	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}
}

func TestServer_RunAndCancel(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}))
	}()
	waitReady(t, srv)

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_ShutdownEndsStreams(t *testing.T) {
	t.Parallel()

	streaming := make(chan struct{})
	shutdownHook := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithOnShutdown(func() { close(shutdownHook) }),
	)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			close(streaming)
			<-r.Context().Done()
		}))
	}()
	waitReady(t, srv)

	go func() {
		resp, err := http.Get("http://" + srv.Addr())
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}()
	<-streaming

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	<-shutdownHook
}

func TestServer_StartError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := httpserver.New(httpserver.WithAddr(ln.Addr().String()))
	err = srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New().Shutdown(context.Background()))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, http.NotFoundHandler()) }()
	waitReady(t, srv)

	_, _, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	cancel()
	require.NoError(t, <-done)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checks   []httpserver.Check
		wantCode int
		wantBody string
	}{
		{
			name:     "liveness",
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok"}`,
		},
		{
			name: "ready",
			checks: []httpserver.Check{
				{Name: "ledger", Probe: func(context.Context) error { return nil }},
			},
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","checks":{"ledger":"ok"}}`,
		},
		{
			name: "not ready",
			checks: []httpserver.Check{
				{Name: "ledger", Probe: func(context.Context) error { return nil }},
				{Name: "tokens", Probe: func(context.Context) error { return errors.New("down") }},
			},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"unavailable","checks":{"ledger":"ok","tokens":"failed"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			httpserver.HealthHandler(nil, time.Second, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
