package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tokengate/internal/audit"
	complianceservice "tokengate/internal/compliance/service"
	compliancestore "tokengate/internal/compliance/store"
	"tokengate/internal/ledger/models"
	"tokengate/internal/ledger/store"
	rolesservice "tokengate/internal/roles/service"
	rolesstore "tokengate/internal/roles/store"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

const (
	owner   = domain.Address("0x00000000000000000000000000000000000000aa")
	alice   = domain.Address("0x00000000000000000000000000000000000000ab")
	bob     = domain.Address("0x00000000000000000000000000000000000000ac")
	carol   = domain.Address("0x00000000000000000000000000000000000000ad")
	mallory = domain.Address("0x00000000000000000000000000000000000000ae")
)

type ServiceSuite struct {
	suite.Suite

	ctx        context.Context
	ledger     *Service
	store      *store.InMemoryStore
	compliance *complianceservice.Service
	roles      *rolesservice.Service
	events     *audit.InMemoryStore
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.events = audit.NewInMemoryStore()
	publisher := audit.NewPublisher(s.events)

	rs := rolesstore.New()
	s.Require().NoError(rs.SetOwner(s.ctx, owner))
	s.roles = rolesservice.NewService(rs, publisher, nil)
	s.compliance = complianceservice.NewService(compliancestore.New(), s.roles, publisher, nil)
	s.store = store.New()
	s.ledger = NewService(s.store, s.compliance, s.roles, publisher, nil)

	// Standard onboarding: owner and the regular participants whitelisted.
	for _, account := range []domain.Address{owner, alice, bob, carol} {
		s.Require().NoError(s.compliance.SetWhitelisted(s.ctx, owner, account, true))
	}
}

func (s *ServiceSuite) mint(to domain.Address, amount uint64) {
	s.Require().NoError(s.ledger.Mint(s.ctx, owner, to, amount))
}

func (s *ServiceSuite) balance(account domain.Address) uint64 {
	balance, err := s.ledger.BalanceOf(s.ctx, account)
	s.Require().NoError(err)
	return balance
}

// checkInvariant verifies that the balances of every account involved in the
// suite sum to the total supply.
func (s *ServiceSuite) checkInvariant() {
	s.T().Helper()
	var sum uint64
	for _, account := range []domain.Address{owner, alice, bob, carol, mallory} {
		balance, err := s.store.BalanceOf(s.ctx, account)
		s.Require().NoError(err)
		sum += balance
	}
	supply, err := s.ledger.TotalSupply(s.ctx)
	s.Require().NoError(err)
	s.Equal(supply, sum)
}

func (s *ServiceSuite) TestTransfer() {
	s.mint(alice, 100)

	s.Require().NoError(s.ledger.Transfer(s.ctx, alice, bob, 40))

	s.Equal(uint64(60), s.balance(alice))
	s.Equal(uint64(40), s.balance(bob))
	s.checkInvariant()
}

func (s *ServiceSuite) TestTransferInsufficientBalance() {
	s.mint(alice, 10)

	err := s.ledger.Transfer(s.ctx, alice, bob, 11)

	s.True(pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance))
	s.Equal(uint64(10), s.balance(alice))
}

func (s *ServiceSuite) TestTransferRequiresBothWhitelisted() {
	s.mint(alice, 100)

	err := s.ledger.Transfer(s.ctx, alice, mallory, 10)

	s.True(pkgerrors.HasCode(err, pkgerrors.CodeRecipientNotWhitelisted))

	// With whitelisting disabled, the same transfer goes through.
	s.Require().NoError(s.compliance.SetWhitelistingEnabled(s.ctx, owner, false))
	s.Require().NoError(s.ledger.Transfer(s.ctx, alice, mallory, 10))
	s.checkInvariant()
}

func (s *ServiceSuite) TestTransferBlacklistDominatesWhitelist() {
	s.mint(alice, 100)
	s.Require().NoError(s.compliance.SetBlacklisted(s.ctx, owner, bob, true))

	err := s.ledger.Transfer(s.ctx, alice, bob, 10)

	s.True(pkgerrors.HasCode(err, pkgerrors.CodeAccountBlacklisted))
}

func (s *ServiceSuite) TestPauseDominatesEverything() {
	s.mint(alice, 100)
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 50))
	s.Require().NoError(s.compliance.Pause(s.ctx, owner))

	s.True(pkgerrors.HasCode(s.ledger.Transfer(s.ctx, alice, bob, 1), pkgerrors.CodePaused))
	s.True(pkgerrors.HasCode(s.ledger.TransferFrom(s.ctx, bob, alice, carol, 1), pkgerrors.CodePaused))
	s.True(pkgerrors.HasCode(s.ledger.Approve(s.ctx, alice, carol, 1), pkgerrors.CodePaused))
	s.True(pkgerrors.HasCode(s.ledger.Mint(s.ctx, owner, alice, 1), pkgerrors.CodePaused))
	s.True(pkgerrors.HasCode(s.ledger.BurnFrom(s.ctx, owner, alice, 1), pkgerrors.CodePaused))

	// Reads stay available while paused.
	s.Equal(uint64(100), s.balance(alice))

	s.Require().NoError(s.compliance.Unpause(s.ctx, owner))
	s.Require().NoError(s.ledger.Transfer(s.ctx, alice, bob, 1))
}

func (s *ServiceSuite) TestTransferFrom() {
	s.mint(alice, 100)
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 50))

	s.Require().NoError(s.ledger.TransferFrom(s.ctx, bob, alice, carol, 30))

	s.Equal(uint64(70), s.balance(alice))
	s.Equal(uint64(30), s.balance(carol))
	remaining, err := s.ledger.Allowance(s.ctx, alice, bob)
	s.Require().NoError(err)
	s.Equal(uint64(20), remaining)
	s.checkInvariant()
}

func (s *ServiceSuite) TestTransferFromInsufficientAllowance() {
	s.mint(alice, 100)
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 10))

	err := s.ledger.TransferFrom(s.ctx, bob, alice, carol, 30)

	s.True(pkgerrors.HasCode(err, pkgerrors.CodeInsufficientAllowance))
	s.Equal(uint64(100), s.balance(alice))
}

func (s *ServiceSuite) TestTransferFromUnlimitedAllowance() {
	s.mint(alice, 100)
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, models.UnlimitedAllowance))

	s.Require().NoError(s.ledger.TransferFrom(s.ctx, bob, alice, carol, 30))

	remaining, err := s.ledger.Allowance(s.ctx, alice, bob)
	s.Require().NoError(err)
	s.Equal(uint64(models.UnlimitedAllowance), remaining)
}

func (s *ServiceSuite) TestTransferFromGatesTheFundsEndpoints() {
	s.mint(alice, 100)
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, mallory, 50))

	// The spender is not whitelisted but the endpoints are; the gate judges
	// the movement of funds, not the operator.
	s.Require().NoError(s.ledger.TransferFrom(s.ctx, mallory, alice, bob, 30))
}

func (s *ServiceSuite) TestApproveRaceGuard() {
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 50))

	err := s.ledger.Approve(s.ctx, alice, bob, 60)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeApproveRace))

	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 0))
	s.Require().NoError(s.ledger.Approve(s.ctx, alice, bob, 60))
}

func (s *ServiceSuite) TestApproveBlacklistedParties() {
	s.Require().NoError(s.compliance.SetBlacklisted(s.ctx, owner, bob, true))

	err := s.ledger.Approve(s.ctx, alice, bob, 50)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeAccountBlacklisted))

	err = s.ledger.Approve(s.ctx, bob, alice, 50)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeAccountBlacklisted))
}

func (s *ServiceSuite) TestMint() {
	s.mint(alice, 100)

	supply, err := s.ledger.TotalSupply(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(100), supply)

	recorded, err := s.events.ListByAccount(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().NotEmpty(recorded)
	s.Equal(audit.ActionMint, recorded[0].Action)
	s.Equal(uint64(0), recorded[0].BalanceBefore)
	s.Equal(uint64(100), recorded[0].BalanceAfter)
}

func (s *ServiceSuite) TestMintAuthorization() {
	s.True(pkgerrors.HasCode(s.ledger.Mint(s.ctx, alice, alice, 1), pkgerrors.CodeForbidden))
	s.True(pkgerrors.HasCode(s.ledger.Mint(s.ctx, owner, domain.ZeroAddress, 1), pkgerrors.CodeInvalidAddress))
	s.True(pkgerrors.HasCode(s.ledger.Mint(s.ctx, owner, alice, 0), pkgerrors.CodeInvalidAmount))
}

func (s *ServiceSuite) TestMintBypassesWhitelist() {
	// mallory was never whitelisted; supply operations do not care.
	s.Require().NoError(s.ledger.Mint(s.ctx, owner, mallory, 10))
	s.Require().NoError(s.ledger.BurnFrom(s.ctx, owner, mallory, 10))
	s.checkInvariant()
}

func (s *ServiceSuite) TestMintToBlacklistedDenied() {
	s.Require().NoError(s.compliance.SetBlacklisted(s.ctx, owner, bob, true))

	err := s.ledger.Mint(s.ctx, owner, bob, 10)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeAccountBlacklisted))
}

func (s *ServiceSuite) TestBurnFrom() {
	s.mint(alice, 100)

	s.Require().NoError(s.ledger.BurnFrom(s.ctx, owner, alice, 30))

	s.Equal(uint64(70), s.balance(alice))
	supply, err := s.ledger.TotalSupply(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(70), supply)
	s.checkInvariant()
}

func (s *ServiceSuite) TestBurnFromExceedingBalance() {
	s.mint(alice, 10)

	err := s.ledger.BurnFrom(s.ctx, owner, alice, 11)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance))
}

func (s *ServiceSuite) TestBurnFromNeedsNoAllowance() {
	s.mint(alice, 100)

	// The owner burns without any approval from alice.
	s.Require().NoError(s.ledger.BurnFrom(s.ctx, owner, alice, 100))
	s.Equal(uint64(0), s.balance(alice))
}

func (s *ServiceSuite) TestEndToEndScenario() {
	// Onboard, fund, trade, then an account turns hostile.
	s.mint(alice, 1_000)
	s.Require().NoError(s.ledger.Transfer(s.ctx, alice, bob, 400))
	s.Require().NoError(s.ledger.Approve(s.ctx, bob, carol, 150))
	s.Require().NoError(s.ledger.TransferFrom(s.ctx, carol, bob, carol, 120))

	s.Require().NoError(s.compliance.SetBlacklisted(s.ctx, owner, bob, true))
	s.True(pkgerrors.HasCode(s.ledger.Transfer(s.ctx, bob, alice, 1), pkgerrors.CodeAccountBlacklisted))
	s.True(pkgerrors.HasCode(s.ledger.TransferFrom(s.ctx, carol, bob, carol, 10), pkgerrors.CodeAccountBlacklisted))

	// The owner confiscates the blacklisted balance.
	s.Require().NoError(s.compliance.SetBlacklisted(s.ctx, owner, bob, false))
	s.Require().NoError(s.ledger.BurnFrom(s.ctx, owner, bob, 280))

	s.Equal(uint64(600), s.balance(alice))
	s.Equal(uint64(0), s.balance(bob))
	s.Equal(uint64(120), s.balance(carol))
	s.checkInvariant()
}

func TestService_ReentrancyGuard(t *testing.T) {
	ctx := context.Background()
	events := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(events)

	rs := rolesstore.New()
	require.NoError(t, rs.SetOwner(ctx, owner))
	roles := rolesservice.NewService(rs, publisher, nil)
	compliance := complianceservice.NewService(compliancestore.New(), roles, publisher, nil)

	var svc *Service
	var reentrantErr error
	calls := 0
	svc = NewService(store.New(), compliance, roles, publisher, nil,
		WithObserver(func(ctx context.Context, _ audit.Event) {
			calls++
			if calls > 1 {
				return
			}
			reentrantErr = svc.Mint(ctx, owner, alice, 1)
		}),
	)

	require.NoError(t, svc.Mint(ctx, owner, alice, 100))

	require.Equal(t, 1, calls)
	require.True(t, pkgerrors.HasCode(reentrantErr, pkgerrors.CodeReentrant))

	// The rejected inner call must not have touched state, and the guard must
	// be free again afterwards.
	balance, err := svc.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)
	require.NoError(t, svc.BurnFrom(ctx, owner, alice, 100))
}
