package service

import (
	"context"
	"log/slog"
	"strconv"

	"tokengate/internal/audit"
	"tokengate/internal/compliance/models"
	"tokengate/internal/gate"
	"tokengate/internal/platform/metrics"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

// Store defines the persistence interface for compliance state.
// Error Contract:
// - Flags never returns a not-found error; an unknown account has zero flags
// - SetFlagBatch is all-or-nothing
// - Policy starts at models.DefaultPolicy
type Store interface {
	Flags(ctx context.Context, account domain.Address) (models.Flags, error)
	SetFlag(ctx context.Context, account domain.Address, flag models.Flag, value bool) error
	SetFlagBatch(ctx context.Context, accounts []domain.Address, flag models.Flag, value bool) error
	Policy(ctx context.Context) (models.Policy, error)
	SetPaused(ctx context.Context, paused bool) error
	SetWhitelistingEnabled(ctx context.Context, enabled bool) error
}

// Roles answers authorization questions for compliance mutations.
type Roles interface {
	IsOwner(ctx context.Context, caller domain.Address) (bool, error)
	IsAuthorizedWhitelister(ctx context.Context, caller domain.Address) (bool, error)
	IsAuthorizedBlacklister(ctx context.Context, caller domain.Address) (bool, error)
}

// MaxBatchSize caps batch flag operations. Larger batches fail before any
// account is touched.
const MaxBatchSize = 300

type Option func(*Service)

// Service owns the allow/deny lists and the global transfer policy.
type Service struct {
	store      Store
	roles      Roles
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	autoRevoke bool
}

func NewService(store Store, roles Roles, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		roles:   roles,
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

// WithAutoRevokeOnBlacklist makes blacklisting an account also revoke its
// whitelist flag, and rejects whitelisting an account that is currently
// blacklisted. Off by default: the two lists are independent.
func WithAutoRevokeOnBlacklist() Option {
	return func(s *Service) {
		s.autoRevoke = true
	}
}

// AccountFlags returns one account's compliance flags.
func (s *Service) AccountFlags(ctx context.Context, account domain.Address) (models.Flags, error) {
	if account.IsZero() {
		return models.Flags{}, pkgerrors.New(pkgerrors.CodeInvalidAddress, "account must not be the zero address")
	}
	flags, err := s.store.Flags(ctx, account)
	if err != nil {
		return models.Flags{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read account flags")
	}
	return flags, nil
}

// SetWhitelisted flips one account's whitelist flag. Caller must be an
// authorized whitelister.
func (s *Service) SetWhitelisted(ctx context.Context, caller, account domain.Address, value bool) error {
	if err := s.requireWhitelister(ctx, caller); err != nil {
		return err
	}
	if account.IsZero() {
		return pkgerrors.New(pkgerrors.CodeInvalidAddress, "account must not be the zero address")
	}
	if s.autoRevoke && value {
		flags, err := s.store.Flags(ctx, account)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read account flags")
		}
		if flags.Blacklisted {
			return pkgerrors.New(pkgerrors.CodeAccountBlacklisted, "cannot whitelist a blacklisted account")
		}
	}
	if err := s.store.SetFlag(ctx, account, models.FlagWhitelisted, value); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to update whitelist flag")
	}
	s.recordFlagChange(ctx, caller, account, models.FlagWhitelisted, value)
	return nil
}

// SetBlacklisted flips one account's blacklist flag. Caller must be an
// authorized blacklister.
func (s *Service) SetBlacklisted(ctx context.Context, caller, account domain.Address, value bool) error {
	if err := s.requireBlacklister(ctx, caller); err != nil {
		return err
	}
	if account.IsZero() {
		return pkgerrors.New(pkgerrors.CodeInvalidAddress, "account must not be the zero address")
	}
	if err := s.store.SetFlag(ctx, account, models.FlagBlacklisted, value); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to update blacklist flag")
	}
	if s.autoRevoke && value {
		if err := s.store.SetFlag(ctx, account, models.FlagWhitelisted, false); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to revoke whitelist flag")
		}
	}
	s.recordFlagChange(ctx, caller, account, models.FlagBlacklisted, value)
	return nil
}

// BatchWhitelist applies one whitelist value to up to MaxBatchSize accounts,
// all-or-nothing. Zero addresses inside the batch are skipped silently.
func (s *Service) BatchWhitelist(ctx context.Context, caller domain.Address, accounts []domain.Address, value bool) error {
	if err := s.requireWhitelister(ctx, caller); err != nil {
		return err
	}
	return s.applyBatch(ctx, caller, accounts, models.FlagWhitelisted, value)
}

// BatchBlacklist applies one blacklist value to up to MaxBatchSize accounts,
// all-or-nothing. Zero addresses inside the batch are skipped silently.
func (s *Service) BatchBlacklist(ctx context.Context, caller domain.Address, accounts []domain.Address, value bool) error {
	if err := s.requireBlacklister(ctx, caller); err != nil {
		return err
	}
	if err := s.applyBatch(ctx, caller, accounts, models.FlagBlacklisted, value); err != nil {
		return err
	}
	if s.autoRevoke && value {
		if err := s.store.SetFlagBatch(ctx, nonZero(accounts), models.FlagWhitelisted, false); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to revoke whitelist flags")
		}
	}
	return nil
}

func (s *Service) applyBatch(ctx context.Context, caller domain.Address, accounts []domain.Address, flag models.Flag, value bool) error {
	if len(accounts) > MaxBatchSize {
		return pkgerrors.New(pkgerrors.CodeBatchTooLarge,
			"batch exceeds the maximum of "+strconv.Itoa(MaxBatchSize)+" accounts")
	}
	filtered := nonZero(accounts)
	if err := s.store.SetFlagBatch(ctx, filtered, flag, value); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to apply flag batch")
	}

	s.emitAudit(ctx, audit.Event{
		Action: audit.ActionBatchFlagsSet,
		Actor:  caller,
		Amount: uint64(len(filtered)),
		Reason: flagChangeReason(flag, value),
	})
	s.metrics.ObserveBatchSize(len(filtered))
	s.metrics.IncrementFlagChange(string(flag))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "flag_batch_applied",
			"flag", flag,
			"value", value,
			"accounts", len(filtered),
			"caller", caller.Short(),
		)
	}
	return nil
}

func nonZero(accounts []domain.Address) []domain.Address {
	filtered := make([]domain.Address, 0, len(accounts))
	for _, account := range accounts {
		if !account.IsZero() {
			filtered = append(filtered, account)
		}
	}
	return filtered
}

// SetWhitelistingEnabled toggles whitelist enforcement for ordinary
// transfers. Owner only.
func (s *Service) SetWhitelistingEnabled(ctx context.Context, caller domain.Address, enabled bool) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.store.SetWhitelistingEnabled(ctx, enabled); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to update whitelisting policy")
	}

	s.emitAudit(ctx, audit.Event{
		Action: audit.ActionPolicyChanged,
		Actor:  caller,
		Reason: "whitelisting_" + enabledWord(enabled),
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "whitelisting_policy_changed", "enabled", enabled, "caller", caller.Short())
	}
	return nil
}

// Pause halts every balance-affecting operation. Owner only; pausing an
// already paused ledger fails.
func (s *Service) Pause(ctx context.Context, caller domain.Address) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	policy, err := s.store.Policy(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read policy")
	}
	if policy.Paused {
		return pkgerrors.New(pkgerrors.CodeAlreadyPaused, "ledger is already paused")
	}
	if err := s.store.SetPaused(ctx, true); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to pause ledger")
	}

	s.emitAudit(ctx, audit.Event{Action: audit.ActionPaused, Actor: caller})
	if s.logger != nil {
		s.logger.WarnContext(ctx, "ledger_paused", "caller", caller.Short())
	}
	return nil
}

// Unpause resumes operations. Owner only; fails when not paused.
func (s *Service) Unpause(ctx context.Context, caller domain.Address) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	policy, err := s.store.Policy(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read policy")
	}
	if !policy.Paused {
		return pkgerrors.New(pkgerrors.CodeNotPaused, "ledger is not paused")
	}
	if err := s.store.SetPaused(ctx, false); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to unpause ledger")
	}

	s.emitAudit(ctx, audit.Event{Action: audit.ActionUnpaused, Actor: caller})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "ledger_unpaused", "caller", caller.Short())
	}
	return nil
}

// Snapshot assembles the transfer gate input for a movement between from and
// to. Zero endpoints (mint, burn) contribute zero-value flags.
func (s *Service) Snapshot(ctx context.Context, from, to domain.Address) (gate.Input, error) {
	policy, err := s.store.Policy(ctx)
	if err != nil {
		return gate.Input{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read policy")
	}
	in := gate.Input{
		From:                from,
		To:                  to,
		Paused:              policy.Paused,
		WhitelistingEnabled: policy.WhitelistingEnabled,
	}
	if !from.IsZero() {
		flags, err := s.store.Flags(ctx, from)
		if err != nil {
			return gate.Input{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read sender flags")
		}
		in.FromBlacklisted = flags.Blacklisted
		in.FromWhitelisted = flags.Whitelisted
	}
	if !to.IsZero() {
		flags, err := s.store.Flags(ctx, to)
		if err != nil {
			return gate.Input{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read recipient flags")
		}
		in.ToBlacklisted = flags.Blacklisted
		in.ToWhitelisted = flags.Whitelisted
	}
	return in, nil
}

func (s *Service) requireOwner(ctx context.Context, caller domain.Address) error {
	isOwner, err := s.roles.IsOwner(ctx, caller)
	if err != nil {
		return err
	}
	if !isOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not the ledger owner")
	}
	return nil
}

func (s *Service) requireWhitelister(ctx context.Context, caller domain.Address) error {
	ok, err := s.roles.IsAuthorizedWhitelister(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not an authorized whitelister")
	}
	return nil
}

func (s *Service) requireBlacklister(ctx context.Context, caller domain.Address) error {
	ok, err := s.roles.IsAuthorizedBlacklister(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not an authorized blacklister")
	}
	return nil
}

func (s *Service) recordFlagChange(ctx context.Context, caller, account domain.Address, flag models.Flag, value bool) {
	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionFlagChanged,
		Actor:   caller,
		Account: account,
		Reason:  flagChangeReason(flag, value),
	})
	s.metrics.IncrementFlagChange(string(flag))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "flag_changed",
			"flag", flag,
			"value", value,
			"account", account.Short(),
			"caller", caller.Short(),
		)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Decision = audit.DecisionApplied
	s.auditor.Emit(ctx, event)
}

func flagChangeReason(flag models.Flag, value bool) string {
	if value {
		return string(flag) + "_set"
	}
	return string(flag) + "_cleared"
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
