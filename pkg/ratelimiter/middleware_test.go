package ratelimiter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dispatchkit/pkg/ratelimiter"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()
	b, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})

	h := ratelimiter.Middleware(b, func(r *http.Request) string {
		return r.Header.Get("X-Recipient")
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(recipient string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/v1/acks", nil)
		if recipient != "" {
			r.Header.Set("X-Recipient", recipient)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusNoContent, call("courier_1").Code)
	w := call("courier_1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = call("courier_1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, call("courier_2").Code)

	// No key, no limit.
	for range 5 {
		assert.Equal(t, http.StatusNoContent, call("").Code)
	}
}
