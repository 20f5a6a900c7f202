package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/audit"
	complianceservice "tokengate/internal/compliance/service"
	compliancestore "tokengate/internal/compliance/store"
	ledgerservice "tokengate/internal/ledger/service"
	ledgerstore "tokengate/internal/ledger/store"
	rolesservice "tokengate/internal/roles/service"
	rolesstore "tokengate/internal/roles/store"
	"tokengate/pkg/domain"
)

const owner = domain.Address("0x00000000000000000000000000000000000000aa")

type world struct {
	seeder     *Seeder
	roles      *rolesservice.Service
	compliance *complianceservice.Service
	ledger     *ledgerservice.Service
}

func newWorld(t *testing.T) *world {
	t.Helper()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	rs := rolesstore.New()
	cs := compliancestore.New()
	ls := ledgerstore.New()

	roles := rolesservice.NewService(rs, publisher, nil)
	compliance := complianceservice.NewService(cs, roles, publisher, nil)
	ledger := ledgerservice.NewService(ls, compliance, roles, publisher, nil)

	return &world{
		seeder:     New(rs, cs, ledger, publisher, nil),
		roles:      roles,
		compliance: compliance,
		ledger:     ledger,
	}
}

func TestSeeder_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("grants the owner its construction-time state", func(t *testing.T) {
		w := newWorld(t)

		require.NoError(t, w.seeder.Seed(ctx, owner, 0))

		isOwner, err := w.roles.IsOwner(ctx, owner)
		require.NoError(t, err)
		assert.True(t, isOwner)

		flags, err := w.compliance.AccountFlags(ctx, owner)
		require.NoError(t, err)
		assert.True(t, flags.Whitelisted)
	})

	t.Run("mints the initial supply exactly once", func(t *testing.T) {
		w := newWorld(t)

		require.NoError(t, w.seeder.Seed(ctx, owner, 1_000_000))
		require.NoError(t, w.seeder.Seed(ctx, owner, 1_000_000))

		supply, err := w.ledger.TotalSupply(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), supply)

		balance, err := w.ledger.BalanceOf(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), balance)
	})

	t.Run("restart after trading does not mint again", func(t *testing.T) {
		w := newWorld(t)
		require.NoError(t, w.seeder.Seed(ctx, owner, 100))
		require.NoError(t, w.ledger.BurnFrom(ctx, owner, owner, 40))

		require.NoError(t, w.seeder.Seed(ctx, owner, 100))

		supply, err := w.ledger.TotalSupply(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(60), supply)
	})

	t.Run("zero owner is rejected", func(t *testing.T) {
		w := newWorld(t)

		require.Error(t, w.seeder.Seed(ctx, domain.ZeroAddress, 0))
	})

	t.Run("explicit roles survive an ownership transfer", func(t *testing.T) {
		const successor = domain.Address("0x00000000000000000000000000000000000000bb")

		w := newWorld(t)
		require.NoError(t, w.seeder.Seed(ctx, owner, 0))
		require.NoError(t, w.roles.TransferOwnership(ctx, owner, successor))

		// The explicit grants let the original owner keep operating after
		// handing ownership away, until they are revoked one by one.
		ok, err := w.roles.IsAuthorizedWhitelister(ctx, owner)
		require.NoError(t, err)
		assert.True(t, ok)

		isOwner, err := w.roles.IsOwner(ctx, owner)
		require.NoError(t, err)
		assert.False(t, isOwner)
	})
}
