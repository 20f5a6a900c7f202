package audit

import (
	"context"
	"sync"

	"tokengate/pkg/domain"
)

// InMemoryStore keeps notification records in memory. It is the default sink
// for tests and for deployments without Postgres or Kafka configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.Address][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.Address][]Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.Address][]Event)
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Account] = append(s.events[event.Account], event)
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, account domain.Address) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[account]...), nil
}
