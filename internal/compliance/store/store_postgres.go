package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tokengate/internal/compliance/models"
	"tokengate/pkg/domain"
)

// PostgresStore persists compliance state in PostgreSQL. Per-account flags
// live in account_flags; the global policy shares the singleton ledger_policy
// row with the role registry.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed compliance store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Flags(ctx context.Context, account domain.Address) (models.Flags, error) {
	query := `
		SELECT whitelisted, blacklisted, updated_at
		FROM account_flags
		WHERE account = $1
	`
	var flags models.Flags
	err := s.db.QueryRowContext(ctx, query, string(account)).
		Scan(&flags.Whitelisted, &flags.Blacklisted, &flags.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Flags{}, nil
		}
		return models.Flags{}, fmt.Errorf("read account flags: %w", err)
	}
	return flags, nil
}

func (s *PostgresStore) SetFlag(ctx context.Context, account domain.Address, flag models.Flag, value bool) error {
	query, err := upsertFlagQuery(flag)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, string(account), value); err != nil {
		return fmt.Errorf("set account flag: %w", err)
	}
	return nil
}

// SetFlagBatch applies one flag value to every account in a single
// transaction, so the batch commits whole or not at all.
func (s *PostgresStore) SetFlagBatch(ctx context.Context, accounts []domain.Address, flag models.Flag, value bool) error {
	query, err := upsertFlagQuery(flag)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flag batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, account := range accounts {
		if _, err := tx.ExecContext(ctx, query, string(account), value); err != nil {
			return fmt.Errorf("set account flag in batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flag batch: %w", err)
	}
	return nil
}

func upsertFlagQuery(flag models.Flag) (string, error) {
	switch flag {
	case models.FlagWhitelisted:
		return `
			INSERT INTO account_flags (account, whitelisted, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (account) DO UPDATE SET whitelisted = EXCLUDED.whitelisted, updated_at = now()
		`, nil
	case models.FlagBlacklisted:
		return `
			INSERT INTO account_flags (account, blacklisted, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (account) DO UPDATE SET blacklisted = EXCLUDED.blacklisted, updated_at = now()
		`, nil
	}
	return "", fmt.Errorf("unknown compliance flag %q", flag)
}

func (s *PostgresStore) Policy(ctx context.Context) (models.Policy, error) {
	query := `SELECT paused, whitelisting_enabled, updated_at FROM ledger_policy WHERE id = 1`
	var policy models.Policy
	err := s.db.QueryRowContext(ctx, query).
		Scan(&policy.Paused, &policy.WhitelistingEnabled, &policy.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultPolicy(), nil
		}
		return models.Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return policy, nil
}

func (s *PostgresStore) SetPaused(ctx context.Context, paused bool) error {
	query := `
		INSERT INTO ledger_policy (id, paused)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET paused = EXCLUDED.paused, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, paused); err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetWhitelistingEnabled(ctx context.Context, enabled bool) error {
	query := `
		INSERT INTO ledger_policy (id, whitelisting_enabled)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET whitelisting_enabled = EXCLUDED.whitelisting_enabled, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, enabled); err != nil {
		return fmt.Errorf("set whitelisting enabled: %w", err)
	}
	return nil
}
