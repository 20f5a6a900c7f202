package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tokengate/internal/ledger/models"
	"tokengate/pkg/domain"
)

// PostgresStore persists balances and allowances in PostgreSQL. Amounts are
// uint64 in the domain and are stored as BIGINT via a lossless two's
// complement cast, so the unlimited allowance sentinel round-trips as -1.
//
// Every mutation runs in one transaction with the touched rows locked, and
// the arithmetic (including overflow checks) happens in Go against the locked
// values. Rows are locked in address order so concurrent transfers cannot
// deadlock.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) BalanceOf(ctx context.Context, account domain.Address) (uint64, error) {
	var stored int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE account = $1`, string(account)).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return uint64(stored), nil
}

func (s *PostgresStore) TotalSupply(ctx context.Context) (uint64, error) {
	var stored int64
	err := s.db.QueryRowContext(ctx,
		`SELECT total_supply FROM ledger_policy WHERE id = 1`).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read total supply: %w", err)
	}
	return uint64(stored), nil
}

func (s *PostgresStore) Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error) {
	var stored int64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM allowances WHERE owner = $1 AND spender = $2`,
		string(owner), string(spender)).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read allowance: %w", err)
	}
	return uint64(stored), nil
}

func (s *PostgresStore) Transfer(ctx context.Context, from, to domain.Address, amount uint64) (models.TransferResult, error) {
	var result models.TransferResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = move(ctx, tx, from, to, amount)
		return err
	})
	return result, err
}

func (s *PostgresStore) TransferFrom(ctx context.Context, owner, spender, to domain.Address, amount uint64) (models.TransferResult, uint64, error) {
	var (
		result    models.TransferResult
		remaining uint64
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		remaining, err = allowanceForUpdate(ctx, tx, owner, spender)
		if err != nil {
			return err
		}
		if remaining < amount {
			return ErrInsufficientAllowance
		}
		result, err = move(ctx, tx, owner, to, amount)
		if err != nil {
			return err
		}
		if remaining != models.UnlimitedAllowance {
			remaining -= amount
			return writeAllowance(ctx, tx, owner, spender, remaining)
		}
		return nil
	})
	return result, remaining, err
}

func (s *PostgresStore) Approve(ctx context.Context, owner, spender domain.Address, amount uint64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := allowanceForUpdate(ctx, tx, owner, spender)
		if err != nil {
			return err
		}
		if amount != 0 && current != 0 {
			return ErrAllowanceRace
		}
		return writeAllowance(ctx, tx, owner, spender, amount)
	})
}

func (s *PostgresStore) Mint(ctx context.Context, to domain.Address, amount uint64) (models.SupplyResult, error) {
	var result models.SupplyResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		supply, err := supplyForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		newSupply, ok := models.SafeAdd(supply, amount)
		if !ok {
			return ErrOverflow
		}
		before, err := balanceForUpdate(ctx, tx, to)
		if err != nil {
			return err
		}
		after, ok := models.SafeAdd(before, amount)
		if !ok {
			return ErrOverflow
		}
		if err := writeSupply(ctx, tx, newSupply); err != nil {
			return err
		}
		if err := writeBalance(ctx, tx, to, after); err != nil {
			return err
		}
		result = models.SupplyResult{BalanceBefore: before, BalanceAfter: after, TotalSupply: newSupply}
		return nil
	})
	return result, err
}

func (s *PostgresStore) Burn(ctx context.Context, from domain.Address, amount uint64) (models.SupplyResult, error) {
	var result models.SupplyResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		supply, err := supplyForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		before, err := balanceForUpdate(ctx, tx, from)
		if err != nil {
			return err
		}
		after, ok := models.SafeSub(before, amount)
		if !ok {
			return ErrInsufficientFunds
		}
		if err := writeSupply(ctx, tx, supply-amount); err != nil {
			return err
		}
		if err := writeBalance(ctx, tx, from, after); err != nil {
			return err
		}
		result = models.SupplyResult{BalanceBefore: before, BalanceAfter: after, TotalSupply: supply - amount}
		return nil
	})
	return result, err
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

// move debits from and credits to inside tx, locking the two balance rows in
// address order.
func move(ctx context.Context, tx *sql.Tx, from, to domain.Address, amount uint64) (models.TransferResult, error) {
	// A self-transfer debits and credits the same row. It must still cover
	// the amount, but the balance does not change.
	if from == to {
		balance, err := balanceForUpdate(ctx, tx, from)
		if err != nil {
			return models.TransferResult{}, err
		}
		if _, ok := models.SafeSub(balance, amount); !ok {
			return models.TransferResult{}, ErrInsufficientFunds
		}
		return models.TransferResult{
			FromBefore: balance,
			FromAfter:  balance,
			ToBefore:   balance,
			ToAfter:    balance,
		}, nil
	}

	first, second := from, to
	if second < first {
		first, second = second, first
	}
	locked := make(map[domain.Address]uint64, 2)
	for _, account := range []domain.Address{first, second} {
		balance, err := balanceForUpdate(ctx, tx, account)
		if err != nil {
			return models.TransferResult{}, err
		}
		locked[account] = balance
	}

	fromBefore, toBefore := locked[from], locked[to]
	fromAfter, ok := models.SafeSub(fromBefore, amount)
	if !ok {
		return models.TransferResult{}, ErrInsufficientFunds
	}
	toAfter, ok := models.SafeAdd(toBefore, amount)
	if !ok {
		return models.TransferResult{}, ErrOverflow
	}
	if err := writeBalance(ctx, tx, from, fromAfter); err != nil {
		return models.TransferResult{}, err
	}
	if err := writeBalance(ctx, tx, to, toAfter); err != nil {
		return models.TransferResult{}, err
	}
	return models.TransferResult{
		FromBefore: fromBefore,
		FromAfter:  fromAfter,
		ToBefore:   toBefore,
		ToAfter:    toAfter,
	}, nil
}

func balanceForUpdate(ctx context.Context, tx *sql.Tx, account domain.Address) (uint64, error) {
	var stored int64
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE account = $1 FOR UPDATE`, string(account)).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("lock balance: %w", err)
	}
	return uint64(stored), nil
}

func writeBalance(ctx context.Context, tx *sql.Tx, account domain.Address, balance uint64) error {
	query := `
		INSERT INTO balances (account, balance)
		VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE SET balance = EXCLUDED.balance
	`
	if _, err := tx.ExecContext(ctx, query, string(account), int64(balance)); err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	return nil
}

func allowanceForUpdate(ctx context.Context, tx *sql.Tx, owner, spender domain.Address) (uint64, error) {
	var stored int64
	err := tx.QueryRowContext(ctx,
		`SELECT amount FROM allowances WHERE owner = $1 AND spender = $2 FOR UPDATE`,
		string(owner), string(spender)).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("lock allowance: %w", err)
	}
	return uint64(stored), nil
}

func writeAllowance(ctx context.Context, tx *sql.Tx, owner, spender domain.Address, amount uint64) error {
	if amount == 0 {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM allowances WHERE owner = $1 AND spender = $2`,
			string(owner), string(spender))
		if err != nil {
			return fmt.Errorf("clear allowance: %w", err)
		}
		return nil
	}
	query := `
		INSERT INTO allowances (owner, spender, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner, spender) DO UPDATE SET amount = EXCLUDED.amount
	`
	if _, err := tx.ExecContext(ctx, query, string(owner), string(spender), int64(amount)); err != nil {
		return fmt.Errorf("write allowance: %w", err)
	}
	return nil
}

func supplyForUpdate(ctx context.Context, tx *sql.Tx) (uint64, error) {
	// The singleton policy row always exists after migration but the lock
	// still needs an upsert path for a fresh database.
	query := `
		INSERT INTO ledger_policy (id) VALUES (1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING total_supply
	`
	var stored int64
	if err := tx.QueryRowContext(ctx, query).Scan(&stored); err != nil {
		return 0, fmt.Errorf("lock total supply: %w", err)
	}
	return uint64(stored), nil
}

func writeSupply(ctx context.Context, tx *sql.Tx, supply uint64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger_policy SET total_supply = $1 WHERE id = 1`, int64(supply)); err != nil {
		return fmt.Errorf("write total supply: %w", err)
	}
	return nil
}
