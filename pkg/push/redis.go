package push

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "push:targets:"

// RedisTokenStore keeps targets in one hash per recipient mapping token to
// its refresh time (RFC 3339).
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisTokenStore.
type RedisOption func(*RedisTokenStore)

// WithKeyPrefix overrides the "push:targets:" key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisTokenStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewRedisTokenStore(client redis.UniversalClient, opts ...RedisOption) *RedisTokenStore {
	s := &RedisTokenStore{client: client, prefix: defaultRedisKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisTokenStore) key(recipientID string) string {
	return s.prefix + recipientID
}

func (s *RedisTokenStore) Register(ctx context.Context, target Target) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if target.RefreshedAt.IsZero() {
		target.RefreshedAt = time.Now().UTC()
	}

	err := s.client.HSet(ctx, s.key(target.RecipientID), target.Token, target.RefreshedAt.UTC().Format(time.RFC3339Nano)).Err()
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisTokenStore) Invalidate(ctx context.Context, recipientID, token string) error {
	if err := s.client.HDel(ctx, s.key(recipientID), token).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisTokenStore) List(ctx context.Context, recipientID string) ([]Target, error) {
	raw, err := s.client.HGetAll(ctx, s.key(recipientID)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	out := make([]Target, 0, len(raw))
	for token, ts := range raw {
		refreshed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			// Unparseable timestamps count as never refreshed.
			refreshed = time.Time{}
		}
		out = append(out, Target{RecipientID: recipientID, Token: token, RefreshedAt: refreshed})
	}
	sortTargets(out)
	return out, nil
}
