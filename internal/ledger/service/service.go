package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tokengate/internal/audit"
	"tokengate/internal/gate"
	"tokengate/internal/guard"
	"tokengate/internal/ledger/models"
	"tokengate/internal/platform/metrics"
	"tokengate/internal/platform/tracer"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/sentinel"
)

// Store defines the persistence interface for balances and allowances.
// Error Contract:
// - Reads never fail on unknown accounts; they report zero
// - Transfer and Burn return sentinel.ErrInsufficientFunds on short balances
// - TransferFrom returns sentinel.ErrInsufficientAllowance before touching
//   balances, and never decrements the unlimited allowance
// - Approve returns sentinel.ErrAllowanceRace when overwriting a live
//   allowance with a non-zero amount
// - Mint returns sentinel.ErrOverflow when supply or balance would wrap
// - Every mutation is atomic
type Store interface {
	BalanceOf(ctx context.Context, account domain.Address) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
	Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error)
	Transfer(ctx context.Context, from, to domain.Address, amount uint64) (models.TransferResult, error)
	TransferFrom(ctx context.Context, owner, spender, to domain.Address, amount uint64) (models.TransferResult, uint64, error)
	Approve(ctx context.Context, owner, spender domain.Address, amount uint64) error
	Mint(ctx context.Context, to domain.Address, amount uint64) (models.SupplyResult, error)
	Burn(ctx context.Context, from domain.Address, amount uint64) (models.SupplyResult, error)
}

// Compliance supplies the transfer gate snapshot.
type Compliance interface {
	Snapshot(ctx context.Context, from, to domain.Address) (gate.Input, error)
}

// Roles answers ownership checks for supply operations.
type Roles interface {
	IsOwner(ctx context.Context, caller domain.Address) (bool, error)
}

// Observer is invoked synchronously after an applied supply operation, inside
// the reentrancy-guarded region. An observer that calls back into Mint or
// BurnFrom gets the Reentrant failure instead of a deadlock or a nested
// mutation.
type Observer func(ctx context.Context, event audit.Event)

type Option func(*Service)

// Service is the ledger itself: balances, allowances and total supply, with
// every movement checked by the compliance gate.
type Service struct {
	store      Store
	compliance Compliance
	roles      Roles
	guard      guard.Guard
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger
	observers  []Observer
}

func NewService(store Store, compliance Compliance, roles Roles, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		compliance: compliance,
		roles:      roles,
		auditor:    auditor,
		tracer:     tracer.NewNoop(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used to span ledger operations.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithObserver registers a synchronous observer for supply operations.
func WithObserver(fn Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, fn)
	}
}

// BalanceOf returns an account's balance. Unknown accounts hold zero.
func (s *Service) BalanceOf(ctx context.Context, account domain.Address) (uint64, error) {
	if account.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidAddress, "account must not be the zero address")
	}
	balance, err := s.store.BalanceOf(ctx, account)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read balance")
	}
	return balance, nil
}

// TotalSupply returns the current total supply.
func (s *Service) TotalSupply(ctx context.Context) (uint64, error) {
	supply, err := s.store.TotalSupply(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read total supply")
	}
	return supply, nil
}

// Allowance returns what spender may still move out of owner's balance.
func (s *Service) Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error) {
	if owner.IsZero() || spender.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidAddress, "owner and spender must not be the zero address")
	}
	allowance, err := s.store.Allowance(ctx, owner, spender)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read allowance")
	}
	return allowance, nil
}

// Transfer moves amount from the caller to recipient after the gate permits.
func (s *Service) Transfer(ctx context.Context, caller, to domain.Address, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTransfer,
		tracer.String(tracer.AttrAccount, caller.String()),
		tracer.String(tracer.AttrCounterparty, to.String()),
		tracer.Uint64(tracer.AttrAmount, amount),
	)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation("transfer", time.Since(start).Seconds())
	}()

	if caller.IsZero() || to.IsZero() {
		err = pkgerrors.New(pkgerrors.CodeInvalidAddress, "transfer endpoints must not be the zero address")
		return err
	}
	if err = s.checkGate(ctx, caller, caller, to, amount, audit.ActionTransfer, span); err != nil {
		return err
	}

	result, storeErr := s.store.Transfer(ctx, caller, to, amount)
	if storeErr != nil {
		err = translateStoreError(storeErr)
		return err
	}

	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionTransfer,
		Actor:         caller,
		Account:       caller,
		Counterparty:  to,
		Amount:        amount,
		BalanceBefore: result.FromBefore,
		BalanceAfter:  result.FromAfter,
		Decision:      audit.DecisionApplied,
	})
	s.metrics.IncrementTransfer("transfer")
	s.logOperation(ctx, "transfer_applied", caller, to, amount)
	return nil
}

// TransferFrom moves amount from owner to recipient on the caller's
// allowance. The gate judges the funds' endpoints, not the spender.
func (s *Service) TransferFrom(ctx context.Context, caller, from, to domain.Address, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTransferFrom,
		tracer.String(tracer.AttrAccount, from.String()),
		tracer.String(tracer.AttrCounterparty, to.String()),
		tracer.Uint64(tracer.AttrAmount, amount),
	)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation("transfer_from", time.Since(start).Seconds())
	}()

	if caller.IsZero() || from.IsZero() || to.IsZero() {
		err = pkgerrors.New(pkgerrors.CodeInvalidAddress, "transfer endpoints must not be the zero address")
		return err
	}
	if err = s.checkGate(ctx, caller, from, to, amount, audit.ActionTransferFrom, span); err != nil {
		return err
	}

	result, _, storeErr := s.store.TransferFrom(ctx, from, caller, to, amount)
	if storeErr != nil {
		err = translateStoreError(storeErr)
		if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientAllowance) {
			s.emitAudit(ctx, audit.Event{
				Action:       audit.ActionTransferDenied,
				Actor:        caller,
				Account:      from,
				Counterparty: to,
				Amount:       amount,
				Decision:     audit.DecisionDenied,
				Reason:       string(pkgerrors.CodeInsufficientAllowance),
			})
		}
		return err
	}

	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionTransferFrom,
		Actor:         caller,
		Account:       from,
		Counterparty:  to,
		Amount:        amount,
		BalanceBefore: result.FromBefore,
		BalanceAfter:  result.FromAfter,
		Decision:      audit.DecisionApplied,
	})
	s.metrics.IncrementTransfer("transfer_from")
	s.logOperation(ctx, "transfer_from_applied", from, to, amount)
	return nil
}

// Approve sets the caller's allowance for spender. Changing a live allowance
// requires zeroing it first, which closes the double-spend window between
// reading and overwriting an allowance.
func (s *Service) Approve(ctx context.Context, caller, spender domain.Address, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanApprove,
		tracer.String(tracer.AttrAccount, caller.String()),
		tracer.String(tracer.AttrCounterparty, spender.String()),
		tracer.Uint64(tracer.AttrAmount, amount),
	)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation("approve", time.Since(start).Seconds())
	}()

	if caller.IsZero() || spender.IsZero() {
		err = pkgerrors.New(pkgerrors.CodeInvalidAddress, "owner and spender must not be the zero address")
		return err
	}

	in, snapErr := s.compliance.Snapshot(ctx, caller, spender)
	if snapErr != nil {
		err = snapErr
		return err
	}
	switch {
	case in.Paused:
		err = pkgerrors.New(pkgerrors.CodePaused, "all transfers are paused")
	case in.FromBlacklisted:
		err = pkgerrors.New(pkgerrors.CodeAccountBlacklisted, "owner account is blacklisted")
	case in.ToBlacklisted:
		err = pkgerrors.New(pkgerrors.CodeAccountBlacklisted, "spender account is blacklisted")
	}
	if err != nil {
		s.emitAudit(ctx, audit.Event{
			Action:       audit.ActionApproveDenied,
			Actor:        caller,
			Account:      caller,
			Counterparty: spender,
			Amount:       amount,
			Decision:     audit.DecisionDenied,
			Reason:       denialReason(err),
		})
		return err
	}

	if storeErr := s.store.Approve(ctx, caller, spender, amount); storeErr != nil {
		err = translateStoreError(storeErr)
		return err
	}

	s.emitAudit(ctx, audit.Event{
		Action:       audit.ActionApprove,
		Actor:        caller,
		Account:      caller,
		Counterparty: spender,
		Amount:       amount,
		Decision:     audit.DecisionApplied,
	})
	s.metrics.IncrementApproval()
	s.logOperation(ctx, "approve_applied", caller, spender, amount)
	return nil
}

// Mint creates amount new units on to's balance. Owner only, reentrancy
// guarded.
func (s *Service) Mint(ctx context.Context, caller, to domain.Address, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanMint,
		tracer.String(tracer.AttrAccount, to.String()),
		tracer.Uint64(tracer.AttrAmount, amount),
	)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation("mint", time.Since(start).Seconds())
	}()

	if err = s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if to.IsZero() {
		err = pkgerrors.New(pkgerrors.CodeInvalidAddress, "mint recipient must not be the zero address")
		return err
	}
	if amount == 0 {
		err = pkgerrors.New(pkgerrors.CodeInvalidAmount, "mint amount must be positive")
		return err
	}

	err = s.guard.Do(func() error {
		if gateErr := s.checkGate(ctx, caller, domain.ZeroAddress, to, amount, audit.ActionMint, span); gateErr != nil {
			return gateErr
		}
		result, storeErr := s.store.Mint(ctx, to, amount)
		if storeErr != nil {
			return translateStoreError(storeErr)
		}

		event := audit.Event{
			Action:        audit.ActionMint,
			Actor:         caller,
			Account:       to,
			Amount:        amount,
			BalanceBefore: result.BalanceBefore,
			BalanceAfter:  result.BalanceAfter,
			Decision:      audit.DecisionApplied,
		}
		s.emitAudit(ctx, event)
		s.metrics.IncrementMint()
		s.metrics.SetTotalSupply(result.TotalSupply)
		s.logOperation(ctx, "mint_applied", domain.ZeroAddress, to, amount)
		s.notifyObservers(ctx, event)
		return nil
	})
	if errors.Is(err, sentinel.ErrReentrant) {
		err = pkgerrors.New(pkgerrors.CodeReentrant, "mint rejected: ledger operation already in progress")
	}
	return err
}

// BurnFrom destroys amount units from from's balance. Owner only, reentrancy
// guarded. No allowance is consulted: burning is an administrative act.
func (s *Service) BurnFrom(ctx context.Context, caller, from domain.Address, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBurn,
		tracer.String(tracer.AttrAccount, from.String()),
		tracer.Uint64(tracer.AttrAmount, amount),
	)
	start := time.Now()
	var err error
	defer func() {
		span.End(err)
		s.metrics.ObserveOperation("burn", time.Since(start).Seconds())
	}()

	if err = s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if from.IsZero() {
		err = pkgerrors.New(pkgerrors.CodeInvalidAddress, "burn account must not be the zero address")
		return err
	}
	if amount == 0 {
		err = pkgerrors.New(pkgerrors.CodeInvalidAmount, "burn amount must be positive")
		return err
	}

	err = s.guard.Do(func() error {
		if gateErr := s.checkGate(ctx, caller, from, domain.ZeroAddress, amount, audit.ActionBurn, span); gateErr != nil {
			return gateErr
		}
		result, storeErr := s.store.Burn(ctx, from, amount)
		if storeErr != nil {
			return translateStoreError(storeErr)
		}

		event := audit.Event{
			Action:        audit.ActionBurn,
			Actor:         caller,
			Account:       from,
			Amount:        amount,
			BalanceBefore: result.BalanceBefore,
			BalanceAfter:  result.BalanceAfter,
			Decision:      audit.DecisionApplied,
		}
		s.emitAudit(ctx, event)
		s.metrics.IncrementBurn()
		s.metrics.SetTotalSupply(result.TotalSupply)
		s.logOperation(ctx, "burn_applied", from, domain.ZeroAddress, amount)
		s.notifyObservers(ctx, event)
		return nil
	})
	if errors.Is(err, sentinel.ErrReentrant) {
		err = pkgerrors.New(pkgerrors.CodeReentrant, "burn rejected: ledger operation already in progress")
	}
	return err
}

// checkGate runs the compliance gate for a movement and records denials.
func (s *Service) checkGate(ctx context.Context, actor, from, to domain.Address, amount uint64, action string, span tracer.Span) error {
	in, err := s.compliance.Snapshot(ctx, from, to)
	if err != nil {
		return err
	}
	if err := gate.Decide(in); err != nil {
		reason := gate.DenyReason(in, err)
		span.SetAttributes(tracer.String(tracer.AttrDenyReason, reason))
		s.metrics.IncrementGateDenial(reason)
		s.emitAudit(ctx, audit.Event{
			Action:       audit.ActionGateDenied,
			Actor:        actor,
			Account:      from,
			Counterparty: to,
			Amount:       amount,
			Decision:     audit.DecisionDenied,
			Reason:       reason,
		})
		if s.logger != nil {
			s.logger.WarnContext(ctx, "gate_denied",
				"operation", action,
				"reason", reason,
				"from", from.Short(),
				"to", to.Short(),
			)
		}
		return err
	}
	return nil
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

func (s *Service) notifyObservers(ctx context.Context, event audit.Event) {
	for _, observe := range s.observers {
		observe(ctx, event)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, event)
}

func (s *Service) logOperation(ctx context.Context, msg string, from, to domain.Address, amount uint64) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, msg,
		"from", from.Short(),
		"to", to.Short(),
		"amount", amount,
	)
}

// translateStoreError maps store sentinels to coded domain errors, exactly
// once at the service boundary.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrInsufficientFunds):
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance does not cover the requested amount")
	case errors.Is(err, sentinel.ErrInsufficientAllowance):
		return pkgerrors.New(pkgerrors.CodeInsufficientAllowance, "allowance does not cover the requested amount")
	case errors.Is(err, sentinel.ErrAllowanceRace):
		return pkgerrors.New(pkgerrors.CodeApproveRace, "allowance must be set to zero before changing it")
	case errors.Is(err, sentinel.ErrOverflow):
		return pkgerrors.New(pkgerrors.CodeOverflow, "operation would overflow the ledger arithmetic")
	default:
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "ledger store failure")
	}
}

func denialReason(err error) string {
	var domainErr *pkgerrors.Error
	if errors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return ""
}
