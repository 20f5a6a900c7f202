package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"tokengate/internal/compliance/models"
	"tokengate/pkg/domain"
)

const (
	flagKeyPrefix   = "tokengate:flags:"
	defaultFlagsTTL = 30 * time.Second
)

// backing is the subset of the compliance store the cache delegates to.
type backing interface {
	Flags(ctx context.Context, account domain.Address) (models.Flags, error)
	SetFlag(ctx context.Context, account domain.Address, flag models.Flag, value bool) error
	SetFlagBatch(ctx context.Context, accounts []domain.Address, flag models.Flag, value bool) error
	Policy(ctx context.Context) (models.Policy, error)
	SetPaused(ctx context.Context, paused bool) error
	SetWhitelistingEnabled(ctx context.Context, enabled bool) error
}

// CachedStore is a read-through Redis cache over another compliance store.
// Only per-account flags are cached: every transfer reads two accounts'
// flags, while the policy is a single hot row the backing store serves
// cheaply and whose pause flip must propagate immediately.
//
// Cache failures degrade to the backing store; they are never surfaced.
type CachedStore struct {
	inner backing
	redis *redis.Client
	ttl   time.Duration
}

// NewCached wraps inner with a Redis flag cache.
func NewCached(inner backing, client *redis.Client) *CachedStore {
	return &CachedStore{inner: inner, redis: client, ttl: defaultFlagsTTL}
}

func (s *CachedStore) Flags(ctx context.Context, account domain.Address) (models.Flags, error) {
	key := flagKeyPrefix + string(account)
	payload, err := s.redis.Get(ctx, key).Bytes()
	if err == nil {
		var flags models.Flags
		if err := json.Unmarshal(payload, &flags); err == nil {
			return flags, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return models.Flags{}, ctx.Err()
	}

	flags, err := s.inner.Flags(ctx, account)
	if err != nil {
		return models.Flags{}, err
	}
	if payload, err := json.Marshal(flags); err == nil {
		s.redis.Set(ctx, key, payload, s.ttl)
	}
	return flags, nil
}

func (s *CachedStore) SetFlag(ctx context.Context, account domain.Address, flag models.Flag, value bool) error {
	if err := s.inner.SetFlag(ctx, account, flag, value); err != nil {
		return err
	}
	s.invalidate(ctx, account)
	return nil
}

func (s *CachedStore) SetFlagBatch(ctx context.Context, accounts []domain.Address, flag models.Flag, value bool) error {
	if err := s.inner.SetFlagBatch(ctx, accounts, flag, value); err != nil {
		return err
	}
	s.invalidate(ctx, accounts...)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, accounts ...domain.Address) {
	keys := make([]string, 0, len(accounts))
	for _, account := range accounts {
		keys = append(keys, flagKeyPrefix+string(account))
	}
	if len(keys) > 0 {
		s.redis.Del(ctx, keys...)
	}
}

func (s *CachedStore) Policy(ctx context.Context) (models.Policy, error) {
	return s.inner.Policy(ctx)
}

func (s *CachedStore) SetPaused(ctx context.Context, paused bool) error {
	return s.inner.SetPaused(ctx, paused)
}

func (s *CachedStore) SetWhitelistingEnabled(ctx context.Context, enabled bool) error {
	return s.inner.SetWhitelistingEnabled(ctx, enabled)
}
