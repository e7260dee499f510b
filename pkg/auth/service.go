package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultIssuer = "dispatchkit"

// Claims are the session token claims. Subject holds the recipient id.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the token lifetime. Default is 24 hours.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock overrides the time source used when issuing tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	s := &Service{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for recipientID.
func (s *Service) Issue(recipientID string) (string, error) {
	if recipientID == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   recipientID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the recipient id it was issued for.
func (s *Service) Parse(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.Join(ErrExpiredToken, err)
		}
		return "", errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
