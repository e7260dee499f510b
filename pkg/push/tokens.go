package push

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// TokenStore keeps the push targets of each recipient.
type TokenStore interface {
	// Register adds or refreshes a target.
	Register(ctx context.Context, target Target) error
	// Invalidate removes a token. Removing an unknown token is not an error.
	Invalidate(ctx context.Context, recipientID, token string) error
	// List returns the recipient's targets ordered by token.
	List(ctx context.Context, recipientID string) ([]Target, error)
}

func validateTarget(t Target) error {
	if t.RecipientID == "" || t.Token == "" {
		return ErrInvalidTarget
	}
	return nil
}

func sortTargets(targets []Target) {
	slices.SortFunc(targets, func(a, b Target) int { return cmp.Compare(a.Token, b.Token) })
}

// MemoryTokenStore is an in-memory TokenStore.
type MemoryTokenStore struct {
	targets map[string]map[string]time.Time
	mu      sync.RWMutex
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{targets: make(map[string]map[string]time.Time)}
}

func (s *MemoryTokenStore) Register(_ context.Context, target Target) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if target.RefreshedAt.IsZero() {
		target.RefreshedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, ok := s.targets[target.RecipientID]
	if !ok {
		tokens = make(map[string]time.Time)
		s.targets[target.RecipientID] = tokens
	}
	tokens[target.Token] = target.RefreshedAt
	return nil
}

func (s *MemoryTokenStore) Invalidate(_ context.Context, recipientID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.targets[recipientID]
	delete(tokens, token)
	if len(tokens) == 0 {
		delete(s.targets, recipientID)
	}
	return nil
}

func (s *MemoryTokenStore) List(_ context.Context, recipientID string) ([]Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := s.targets[recipientID]
	out := make([]Target, 0, len(tokens))
	for token, refreshed := range tokens {
		out = append(out, Target{RecipientID: recipientID, Token: token, RefreshedAt: refreshed})
	}
	sortTargets(out)
	return out, nil
}
