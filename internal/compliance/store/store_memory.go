package store

import (
	"context"
	"sync"
	"time"

	"tokengate/internal/compliance/models"
	"tokengate/pkg/domain"
)

// Error Contract:
// - Flags never fails; an account with no row reports zero-value flags
// - SetFlag and SetFlagBatch overwrite; the batch is applied under one lock
//   so readers never observe a half-applied batch
// - Policy never fails; it starts at models.DefaultPolicy

// InMemoryStore keeps compliance state in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	flags  map[domain.Address]models.Flags
	policy models.Policy
}

// New constructs an in-memory compliance store with the default policy.
func New() *InMemoryStore {
	return &InMemoryStore{
		flags:  make(map[domain.Address]models.Flags),
		policy: models.DefaultPolicy(),
	}
}

func (s *InMemoryStore) Flags(_ context.Context, account domain.Address) (models.Flags, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[account], nil
}

func (s *InMemoryStore) SetFlag(_ context.Context, account domain.Address, flag models.Flag, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(account, flag, value)
	return nil
}

func (s *InMemoryStore) SetFlagBatch(_ context.Context, accounts []domain.Address, flag models.Flag, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.apply(account, flag, value)
	}
	return nil
}

func (s *InMemoryStore) apply(account domain.Address, flag models.Flag, value bool) {
	current := s.flags[account]
	switch flag {
	case models.FlagWhitelisted:
		current.Whitelisted = value
	case models.FlagBlacklisted:
		current.Blacklisted = value
	}
	current.UpdatedAt = time.Now()
	s.flags[account] = current
}

func (s *InMemoryStore) Policy(_ context.Context) (models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy, nil
}

func (s *InMemoryStore) SetPaused(_ context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy.Paused = paused
	s.policy.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) SetWhitelistingEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy.WhitelistingEnabled = enabled
	s.policy.UpdatedAt = time.Now()
	return nil
}
