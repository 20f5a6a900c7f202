package audit

import (
	"context"
	"database/sql"
	"fmt"

	"tokengate/pkg/domain"
)

// PostgresStore persists notification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO ledger_events
			(id, occurred_at, action, actor, account, counterparty, amount,
			 balance_before, balance_after, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.Action,
		event.Actor.String(),
		event.Account.String(),
		event.Counterparty.String(),
		int64(event.Amount),
		int64(event.BalanceBefore),
		int64(event.BalanceAfter),
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append ledger event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, account domain.Address) ([]Event, error) {
	query := `
		SELECT id, occurred_at, action, actor, account, counterparty, amount,
		       balance_before, balance_after, decision, reason, request_id
		FROM ledger_events
		WHERE account = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, account.String())
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e                         Event
			actor, acct, counterparty string
			amount, before, after     int64
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &actor, &acct, &counterparty,
			&amount, &before, &after, &e.Decision, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		e.Actor = domain.Address(actor)
		e.Account = domain.Address(acct)
		e.Counterparty = domain.Address(counterparty)
		e.Amount = uint64(amount)
		e.BalanceBefore = uint64(before)
		e.BalanceAfter = uint64(after)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}
