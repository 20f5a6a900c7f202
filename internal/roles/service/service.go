package service

import (
	"context"
	"errors"
	"log/slog"

	"tokengate/internal/audit"
	"tokengate/internal/platform/metrics"
	"tokengate/internal/roles/models"
	"tokengate/internal/roles/store"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

// Store defines the persistence interface for the role registry.
// Error Contract:
// - Owner returns store.ErrNotFound before the registry is seeded
// - SetOwner, SetRole overwrite; HasRole reports membership without error
type Store interface {
	Owner(ctx context.Context) (domain.Address, error)
	SetOwner(ctx context.Context, owner domain.Address) error
	SetRole(ctx context.Context, account domain.Address, role models.Role, enabled bool) error
	HasRole(ctx context.Context, account domain.Address, role models.Role) (bool, error)
}

type Option func(*Service)

// Service manages the owner and the whitelister/blacklister role sets. The
// owner implicitly holds every role, so role checks always consult ownership.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Owner returns the current owner address.
func (s *Service) Owner(ctx context.Context) (domain.Address, error) {
	owner, err := s.store.Owner(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ZeroAddress, pkgerrors.New(pkgerrors.CodeNotFound, "ledger owner is not set")
		}
		return domain.ZeroAddress, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read owner")
	}
	return owner, nil
}

// IsOwner reports whether caller is the current owner.
func (s *Service) IsOwner(ctx context.Context, caller domain.Address) (bool, error) {
	owner, err := s.store.Owner(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read owner")
	}
	return owner == caller && !caller.IsZero(), nil
}

// IsAuthorizedWhitelister reports whether caller may flip whitelist flags.
// The owner qualifies without explicit membership.
func (s *Service) IsAuthorizedWhitelister(ctx context.Context, caller domain.Address) (bool, error) {
	return s.isAuthorized(ctx, caller, models.RoleWhitelister)
}

// IsAuthorizedBlacklister reports whether caller may flip blacklist flags.
// The owner qualifies without explicit membership.
func (s *Service) IsAuthorizedBlacklister(ctx context.Context, caller domain.Address) (bool, error) {
	return s.isAuthorized(ctx, caller, models.RoleBlacklister)
}

func (s *Service) isAuthorized(ctx context.Context, caller domain.Address, role models.Role) (bool, error) {
	isOwner, err := s.IsOwner(ctx, caller)
	if err != nil {
		return false, err
	}
	if isOwner {
		return true, nil
	}
	member, err := s.store.HasRole(ctx, caller, role)
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to check role membership")
	}
	return member, nil
}

// SetWhitelister grants or revokes the whitelister role. Owner only.
func (s *Service) SetWhitelister(ctx context.Context, caller, account domain.Address, enabled bool) error {
	return s.setRole(ctx, caller, account, models.RoleWhitelister, enabled)
}

// SetBlacklister grants or revokes the blacklister role. Owner only.
func (s *Service) SetBlacklister(ctx context.Context, caller, account domain.Address, enabled bool) error {
	return s.setRole(ctx, caller, account, models.RoleBlacklister, enabled)
}

func (s *Service) setRole(ctx context.Context, caller, account domain.Address, role models.Role, enabled bool) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if account.IsZero() {
		return pkgerrors.New(pkgerrors.CodeInvalidAddress, "role account must not be the zero address")
	}
	if err := s.store.SetRole(ctx, account, role, enabled); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to update role membership")
	}

	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionRoleChanged,
		Actor:   caller,
		Account: account,
		Reason:  roleChangeReason(role, enabled),
	})
	s.metrics.IncrementRoleChange(string(role))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "role_changed",
			"role", role,
			"account", account.Short(),
			"enabled", enabled,
			"caller", caller.Short(),
		)
	}
	return nil
}

// TransferOwnership moves the owner override to newOwner. It does not touch
// explicit role membership: a revoked owner keeps only the roles they were
// granted explicitly.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return pkgerrors.New(pkgerrors.CodeInvalidAddress, "new owner must not be the zero address")
	}
	if err := s.store.SetOwner(ctx, newOwner); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to transfer ownership")
	}

	s.emitAudit(ctx, audit.Event{
		Action:       audit.ActionOwnerChanged,
		Actor:        caller,
		Account:      newOwner,
		Counterparty: caller,
	})
	s.metrics.IncrementRoleChange("owner")
	if s.logger != nil {
		s.logger.InfoContext(ctx, "ownership_transferred",
			"previous", caller.Short(),
			"new", newOwner.Short(),
		)
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, caller domain.Address) error {
	isOwner, err := s.IsOwner(ctx, caller)
	if err != nil {
		return err
	}
	if !isOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not the ledger owner")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Decision = audit.DecisionApplied
	s.auditor.Emit(ctx, event)
}

func roleChangeReason(role models.Role, enabled bool) string {
	if enabled {
		return string(role) + "_granted"
	}
	return string(role) + "_revoked"
}
