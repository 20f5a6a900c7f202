package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/audit"
	"tokengate/internal/roles/store"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000aa")
	operator = domain.Address("0x00000000000000000000000000000000000000bb")
	outsider = domain.Address("0x00000000000000000000000000000000000000cc")
)

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	events := audit.NewInMemoryStore()
	svc := NewService(store.New(), audit.NewPublisher(events), nil)
	require.NoError(t, svc.store.SetOwner(context.Background(), owner))
	return svc, events
}

func TestService_SetWhitelister(t *testing.T) {
	ctx := context.Background()

	t.Run("owner grants and revokes the role", func(t *testing.T) {
		svc, events := newTestService(t)

		require.NoError(t, svc.SetWhitelister(ctx, owner, operator, true))
		ok, err := svc.IsAuthorizedWhitelister(ctx, operator)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, svc.SetWhitelister(ctx, owner, operator, false))
		ok, err = svc.IsAuthorizedWhitelister(ctx, operator)
		require.NoError(t, err)
		assert.False(t, ok)

		recorded, err := events.ListByAccount(ctx, operator)
		require.NoError(t, err)
		require.Len(t, recorded, 2)
		assert.Equal(t, audit.ActionRoleChanged, recorded[0].Action)
		assert.Equal(t, "whitelister_granted", recorded[0].Reason)
		assert.Equal(t, "whitelister_revoked", recorded[1].Reason)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.SetWhitelister(ctx, outsider, operator, true)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
	})

	t.Run("zero address cannot hold a role", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.SetWhitelister(ctx, owner, domain.ZeroAddress, true)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidAddress))
	})
}

func TestService_Predicates(t *testing.T) {
	ctx := context.Background()

	t.Run("owner is implicitly whitelister and blacklister", func(t *testing.T) {
		svc, _ := newTestService(t)

		for _, check := range []func(context.Context, domain.Address) (bool, error){
			svc.IsAuthorizedWhitelister, svc.IsAuthorizedBlacklister,
		} {
			ok, err := check(ctx, owner)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("blacklister role does not imply whitelister", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.SetBlacklister(ctx, owner, operator, true))

		ok, err := svc.IsAuthorizedBlacklister(ctx, operator)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.IsAuthorizedWhitelister(ctx, operator)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero address is never owner", func(t *testing.T) {
		svc, _ := newTestService(t)

		ok, err := svc.IsOwner(ctx, domain.ZeroAddress)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_TransferOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the implicit override but not explicit grants", func(t *testing.T) {
		svc, _ := newTestService(t)

		require.NoError(t, svc.TransferOwnership(ctx, owner, operator))

		current, err := svc.Owner(ctx)
		require.NoError(t, err)
		assert.Equal(t, operator, current)

		// The previous owner loses the implicit roles with the ownership.
		ok, err := svc.IsAuthorizedWhitelister(ctx, owner)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.IsAuthorizedWhitelister(ctx, operator)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("previous owner keeps explicitly granted roles", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.SetBlacklister(ctx, owner, owner, true))

		require.NoError(t, svc.TransferOwnership(ctx, owner, operator))

		ok, err := svc.IsAuthorizedBlacklister(ctx, owner)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects zero address", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.TransferOwnership(ctx, owner, domain.ZeroAddress)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidAddress))
	})

	t.Run("only the owner may transfer", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.TransferOwnership(ctx, outsider, outsider)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
	})
}
