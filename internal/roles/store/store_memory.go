package store

import (
	"context"
	"sync"
	"time"

	"tokengate/internal/roles/models"
	"tokengate/pkg/domain"
)

// Error Contract:
// - Owner returns ErrNotFound until SetOwner has been called
// - SetRole and SetOwner overwrite and never fail
// - HasRole never fails; absent membership is simply false

// InMemoryStore keeps the role registry in process memory. It is the default
// store for tests and single-node deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	owner   domain.Address
	members map[models.Role]map[domain.Address]time.Time
}

// New constructs an empty in-memory role registry.
func New() *InMemoryStore {
	return &InMemoryStore{members: make(map[models.Role]map[domain.Address]time.Time)}
}

func (s *InMemoryStore) Owner(_ context.Context) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.owner.IsZero() {
		return domain.ZeroAddress, ErrNotFound
	}
	return s.owner, nil
}

func (s *InMemoryStore) SetOwner(_ context.Context, owner domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	return nil
}

func (s *InMemoryStore) SetRole(_ context.Context, account domain.Address, role models.Role, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants, ok := s.members[role]
	if !ok {
		grants = make(map[domain.Address]time.Time)
		s.members[role] = grants
	}
	if enabled {
		grants[account] = time.Now()
		return nil
	}
	delete(grants, account)
	return nil
}

func (s *InMemoryStore) HasRole(_ context.Context, account domain.Address, role models.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[role][account]
	return ok, nil
}
