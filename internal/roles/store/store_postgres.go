package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tokengate/internal/roles/models"
	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
)

// PostgresStore persists the role registry in PostgreSQL. The owner lives on
// the singleton ledger_policy row so ownership transfer and policy flips share
// one source of truth.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed role registry.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Owner(ctx context.Context) (domain.Address, error) {
	query := `SELECT owner_address FROM ledger_policy WHERE id = 1`
	var owner sql.NullString
	if err := s.db.QueryRowContext(ctx, query).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ZeroAddress, sentinel.ErrNotFound
		}
		return domain.ZeroAddress, fmt.Errorf("read owner: %w", err)
	}
	if !owner.Valid || owner.String == "" {
		return domain.ZeroAddress, sentinel.ErrNotFound
	}
	return domain.Address(owner.String), nil
}

func (s *PostgresStore) SetOwner(ctx context.Context, owner domain.Address) error {
	query := `
		INSERT INTO ledger_policy (id, owner_address)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET owner_address = EXCLUDED.owner_address
	`
	if _, err := s.db.ExecContext(ctx, query, string(owner)); err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetRole(ctx context.Context, account domain.Address, role models.Role, enabled bool) error {
	if enabled {
		query := `
			INSERT INTO ledger_roles (account, role, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (account, role) DO UPDATE SET updated_at = now()
		`
		if _, err := s.db.ExecContext(ctx, query, string(account), string(role)); err != nil {
			return fmt.Errorf("grant role: %w", err)
		}
		return nil
	}
	query := `DELETE FROM ledger_roles WHERE account = $1 AND role = $2`
	if _, err := s.db.ExecContext(ctx, query, string(account), string(role)); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasRole(ctx context.Context, account domain.Address, role models.Role) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_roles WHERE account = $1 AND role = $2)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, string(account), string(role)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}
