package audit

import (
	"context"

	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
)

// Store is an append-only sink for notification records.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, account domain.Address) ([]Event, error)
}

// TeeStore fans an event out to several sinks. Append is best-effort per
// sink: the first error is returned but remaining sinks still receive the
// event, so a broken side-channel cannot starve the others.
type TeeStore struct {
	sinks []Store
}

// NewTee builds a fan-out store over the given sinks.
func NewTee(sinks ...Store) *TeeStore {
	return &TeeStore{sinks: sinks}
}

func (t *TeeStore) Append(ctx context.Context, event Event) error {
	var firstErr error
	for _, s := range t.sinks {
		if err := s.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListByAccount reads from the first sink that can serve reads.
func (t *TeeStore) ListByAccount(ctx context.Context, account domain.Address) ([]Event, error) {
	for _, s := range t.sinks {
		events, err := s.ListByAccount(ctx, account)
		if err == nil {
			return events, nil
		}
	}
	return nil, ErrNotFound
}
