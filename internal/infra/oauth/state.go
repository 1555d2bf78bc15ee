// Package oauth implements the federated sign-in providers, their registry,
// and the single-use state store backing the authorization flow.
package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

const stateTTL = 10 * time.Minute

type stateEntry struct {
	claim     service.StateClaim
	expiresAt time.Time
}

// MemoryStateStore is an in-memory single-use state store for CSRF
// protection of the OAuth flow. Entries expire after ten minutes and are
// removed on first consumption.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]stateEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStateStore creates an empty state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: make(map[string]stateEntry),
		ttl:     stateTTL,
		now:     time.Now,
	}
}

// Issue mints a cryptographically random state token bound to the claim.
func (s *MemoryStateStore) Issue(claim service.StateClaim) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate state token")
	}
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupLocked()
	s.entries[state] = stateEntry{claim: claim, expiresAt: s.now().Add(s.ttl)}

	return state, nil
}

// Consume redeems a state token. The token is removed whether or not it was
// still valid, so a replay always fails.
func (s *MemoryStateStore) Consume(state string) (service.StateClaim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return service.StateClaim{}, false
	}
	delete(s.entries, state)

	if s.now().After(entry.expiresAt) {
		return service.StateClaim{}, false
	}

	return entry.claim, true
}

func (s *MemoryStateStore) cleanupLocked() {
	now := s.now()
	for state, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, state)
		}
	}
}
