package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/auth"
)

func TestService_IssueParse(t *testing.T) {
	t.Parallel()

	svc, err := auth.NewService("secret")
	require.NoError(t, err)

	token, err := svc.Issue("courier_7")
	require.NoError(t, err)

	id, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "courier_7", id)
}

func TestService_Rejects(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-48 * time.Hour)
	issuer, err := auth.NewService("secret", auth.WithClock(func() time.Time { return past }), auth.WithTTL(time.Hour))
	require.NoError(t, err)
	expired, err := issuer.Issue("courier_7")
	require.NoError(t, err)

	other, err := auth.NewService("other-secret")
	require.NoError(t, err)
	foreign, err := other.Issue("courier_7")
	require.NoError(t, err)

	otherIssuer, err := auth.NewService("secret", auth.WithIssuer("someone-else"))
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Issue("courier_7")
	require.NoError(t, err)

	svc, err := auth.NewService("secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", auth.ErrMissingToken},
		{"garbage", "not.a.token", auth.ErrInvalidToken},
		{"expired", expired, auth.ErrExpiredToken},
		{"wrong secret", foreign, auth.ErrInvalidToken},
		{"wrong issuer", wrongIssuer, auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := auth.NewService("")
	assert.ErrorIs(t, err, auth.ErrMissingSecret)

	svc, err := auth.NewService("secret")
	require.NoError(t, err)
	_, err = svc.Issue("")
	assert.ErrorIs(t, err, auth.ErrMissingSubject)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc, err := auth.NewService("secret")
	require.NoError(t, err)
	token, err := svc.Issue("courier_7")
	require.NoError(t, err)

	handler := auth.MiddlewareWithExtractor(svc, auth.FirstOf(auth.BearerToken, auth.QueryToken("token")))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.RecipientID(r.Context())
			require.True(t, ok)
			_, _ = w.Write([]byte(id))
		}),
	)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "courier_7"},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, http.StatusOK, "courier_7"},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRecipientID_Empty(t *testing.T) {
	t.Parallel()

	_, ok := auth.RecipientID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
