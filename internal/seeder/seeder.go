// Package seeder initializes the ledger's administrative state at startup.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"tokengate/internal/audit"
	compliancemodels "tokengate/internal/compliance/models"
	rolesmodels "tokengate/internal/roles/models"
	"tokengate/pkg/domain"
)

// RoleStore defines the role registry methods the seeder needs.
type RoleStore interface {
	SetOwner(ctx context.Context, owner domain.Address) error
	SetRole(ctx context.Context, account domain.Address, role rolesmodels.Role, enabled bool) error
}

// ComplianceStore defines the compliance methods the seeder needs.
type ComplianceStore interface {
	SetFlag(ctx context.Context, account domain.Address, flag compliancemodels.Flag, value bool) error
}

// Ledger defines the supply operation the seeder may run once.
type Ledger interface {
	TotalSupply(ctx context.Context) (uint64, error)
	Mint(ctx context.Context, caller, to domain.Address, amount uint64) error
}

// Seeder grants the configured owner its construction-time state: ownership,
// both roles, whitelisted status, and optionally an initial supply. Every
// step is an overwrite, so re-running at every startup is safe.
type Seeder struct {
	roles      RoleStore
	compliance ComplianceStore
	ledger     Ledger
	auditor    *audit.Publisher
	logger     *slog.Logger
}

// New creates a seeder.
func New(roles RoleStore, compliance ComplianceStore, ledger Ledger, auditor *audit.Publisher, logger *slog.Logger) *Seeder {
	return &Seeder{
		roles:      roles,
		compliance: compliance,
		ledger:     ledger,
		auditor:    auditor,
		logger:     logger,
	}
}

// Seed installs owner and, when initialSupply is non-zero and the ledger has
// never been funded, mints the initial supply to the owner.
func (s *Seeder) Seed(ctx context.Context, owner domain.Address, initialSupply uint64) error {
	if owner.IsZero() {
		return fmt.Errorf("ledger owner must not be the zero address")
	}

	if err := s.roles.SetOwner(ctx, owner); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	for _, role := range []rolesmodels.Role{rolesmodels.RoleWhitelister, rolesmodels.RoleBlacklister} {
		if err := s.roles.SetRole(ctx, owner, role, true); err != nil {
			return fmt.Errorf("seed owner role %s: %w", role, err)
		}
	}
	if err := s.compliance.SetFlag(ctx, owner, compliancemodels.FlagWhitelisted, true); err != nil {
		return fmt.Errorf("seed owner whitelist flag: %w", err)
	}

	minted := uint64(0)
	if initialSupply > 0 {
		supply, err := s.ledger.TotalSupply(ctx)
		if err != nil {
			return fmt.Errorf("read supply before seeding: %w", err)
		}
		// Only a never-funded ledger receives the initial mint; restarts of a
		// running system must not inflate the supply.
		if supply == 0 {
			if err := s.ledger.Mint(ctx, owner, owner, initialSupply); err != nil {
				return fmt.Errorf("seed initial supply: %w", err)
			}
			minted = initialSupply
		}
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionLedgerSeeded,
			Actor:    owner,
			Account:  owner,
			Amount:   minted,
			Decision: audit.DecisionApplied,
		})
	}
	if s.logger != nil {
		s.logger.Info("ledger seeded",
			"owner", owner.Short(),
			"initial_supply_minted", minted,
		)
	}
	return nil
}
