package store

import (
	"context"
	"sync"

	"tokengate/internal/ledger/models"
	"tokengate/pkg/domain"
)

// Error Contract:
// - Reads never fail; unknown accounts have balance 0 and allowance 0
// - Transfer and Burn return ErrInsufficientFunds when the debit does not cover
// - TransferFrom additionally returns ErrInsufficientAllowance
// - Approve returns ErrAllowanceRace when overwriting a live allowance with a
//   non-zero amount
// - Mint returns ErrOverflow when the supply or the credited balance would wrap

// InMemoryStore keeps balances and allowances in process memory. All
// mutations happen under one lock, so every operation is atomic.
type InMemoryStore struct {
	mu          sync.RWMutex
	balances    map[domain.Address]uint64
	allowances  map[domain.Address]map[domain.Address]uint64
	totalSupply uint64
}

// New constructs an empty in-memory ledger store.
func New() *InMemoryStore {
	return &InMemoryStore{
		balances:   make(map[domain.Address]uint64),
		allowances: make(map[domain.Address]map[domain.Address]uint64),
	}
}

func (s *InMemoryStore) BalanceOf(_ context.Context, account domain.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

func (s *InMemoryStore) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSupply, nil
}

func (s *InMemoryStore) Allowance(_ context.Context, owner, spender domain.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowances[owner][spender], nil
}

func (s *InMemoryStore) Transfer(_ context.Context, from, to domain.Address, amount uint64) (models.TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(from, to, amount)
}

func (s *InMemoryStore) TransferFrom(_ context.Context, owner, spender, to domain.Address, amount uint64) (models.TransferResult, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.allowances[owner][spender]
	if remaining < amount {
		return models.TransferResult{}, remaining, ErrInsufficientAllowance
	}
	result, err := s.move(owner, to, amount)
	if err != nil {
		return models.TransferResult{}, remaining, err
	}
	if remaining != models.UnlimitedAllowance {
		remaining -= amount
		s.setAllowance(owner, spender, remaining)
	}
	return result, remaining, nil
}

// move debits from and credits to. Callers hold the write lock.
func (s *InMemoryStore) move(from, to domain.Address, amount uint64) (models.TransferResult, error) {
	fromBefore := s.balances[from]
	fromAfter, ok := models.SafeSub(fromBefore, amount)
	if !ok {
		return models.TransferResult{}, ErrInsufficientFunds
	}
	// A self-transfer debits and credits the same cell. It must still cover
	// the amount, but the balance does not change.
	if from == to {
		return models.TransferResult{
			FromBefore: fromBefore,
			FromAfter:  fromBefore,
			ToBefore:   fromBefore,
			ToAfter:    fromBefore,
		}, nil
	}
	toBefore := s.balances[to]
	toAfter, ok := models.SafeAdd(toBefore, amount)
	if !ok {
		return models.TransferResult{}, ErrOverflow
	}
	s.balances[from] = fromAfter
	s.balances[to] = toAfter
	return models.TransferResult{
		FromBefore: fromBefore,
		FromAfter:  fromAfter,
		ToBefore:   toBefore,
		ToAfter:    toAfter,
	}, nil
}

func (s *InMemoryStore) Approve(_ context.Context, owner, spender domain.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.allowances[owner][spender]
	if amount != 0 && current != 0 {
		return ErrAllowanceRace
	}
	s.setAllowance(owner, spender, amount)
	return nil
}

// setAllowance writes an allowance cell. Callers hold the write lock.
func (s *InMemoryStore) setAllowance(owner, spender domain.Address, amount uint64) {
	spenders, ok := s.allowances[owner]
	if !ok {
		spenders = make(map[domain.Address]uint64)
		s.allowances[owner] = spenders
	}
	if amount == 0 {
		delete(spenders, spender)
		return
	}
	spenders[spender] = amount
}

func (s *InMemoryStore) Mint(_ context.Context, to domain.Address, amount uint64) (models.SupplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supply, ok := models.SafeAdd(s.totalSupply, amount)
	if !ok {
		return models.SupplyResult{}, ErrOverflow
	}
	before := s.balances[to]
	after, ok := models.SafeAdd(before, amount)
	if !ok {
		return models.SupplyResult{}, ErrOverflow
	}
	s.totalSupply = supply
	s.balances[to] = after
	return models.SupplyResult{BalanceBefore: before, BalanceAfter: after, TotalSupply: supply}, nil
}

func (s *InMemoryStore) Burn(_ context.Context, from domain.Address, amount uint64) (models.SupplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.balances[from]
	after, ok := models.SafeSub(before, amount)
	if !ok {
		return models.SupplyResult{}, ErrInsufficientFunds
	}
	// The supply covers every balance, so this subtraction cannot wrap.
	s.totalSupply -= amount
	s.balances[from] = after
	return models.SupplyResult{BalanceBefore: before, BalanceAfter: after, TotalSupply: s.totalSupply}, nil
}
