package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{ name string }

var recipientContextKey = &contextKey{name: "recipient_id"}

// WithRecipientID stores the authenticated recipient id in ctx.
func WithRecipientID(ctx context.Context, recipientID string) context.Context {
	return context.WithValue(ctx, recipientContextKey, recipientID)
}

// RecipientID returns the authenticated recipient id stored by Middleware.
func RecipientID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(recipientContextKey).(string)
	return id, ok && id != ""
}

// TokenExtractor pulls a raw token from a request.
type TokenExtractor func(r *http.Request) (string, error)

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// QueryToken reads the token from a query parameter. EventSource clients
// cannot set headers, so the live stream accepts this form.
func QueryToken(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get(param)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

// FirstOf tries extractors in order.
func FirstOf(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			if token, err := ex(r); err == nil {
				return token, nil
			}
		}
		return "", ErrMissingToken
	}
}

// Middleware authenticates requests with a bearer token.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return MiddlewareWithExtractor(svc, BearerToken)
}

// MiddlewareWithExtractor authenticates requests with a custom extractor and
// responds 401 when no valid token is found.
func MiddlewareWithExtractor(svc *Service, extract TokenExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extract(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			recipientID, err := svc.Parse(token)
			if err != nil {
				http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRecipientID(r.Context(), recipientID)))
		})
	}
}
