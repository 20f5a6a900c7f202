package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tokengate/internal/audit"
	complianceservice "tokengate/internal/compliance/service"
	compliancestore "tokengate/internal/compliance/store"
	"tokengate/internal/ledger/mocks"
	"tokengate/internal/ledger/models"
	rolesservice "tokengate/internal/roles/service"
	rolesstore "tokengate/internal/roles/store"
	pkgerrors "tokengate/pkg/domain-errors"
)

// newMockedService wires the ledger service over a mocked store, with real
// role and compliance services so the gate still runs.
func newMockedService(t *testing.T) (*Service, *mocks.MockStore) {
	t.Helper()
	ctx := context.Background()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	rs := rolesstore.New()
	require.NoError(t, rs.SetOwner(ctx, owner))
	roles := rolesservice.NewService(rs, publisher, nil)

	cs := compliancestore.New()
	compliance := complianceservice.NewService(cs, roles, publisher, nil)
	require.NoError(t, compliance.SetWhitelisted(ctx, owner, alice, true))
	require.NoError(t, compliance.SetWhitelisted(ctx, owner, bob, true))

	store := mocks.NewMockStore(gomock.NewController(t))
	return NewService(store, compliance, roles, publisher, nil), store
}

func TestService_StoreFailurePropagation(t *testing.T) {
	ctx := context.Background()
	infraErr := errors.New("connection reset")

	t.Run("transfer wraps infrastructure failures as internal", func(t *testing.T) {
		svc, store := newMockedService(t)
		store.EXPECT().
			Transfer(gomock.Any(), alice, bob, uint64(10)).
			Return(models.TransferResult{}, infraErr)

		err := svc.Transfer(ctx, alice, bob, 10)

		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
		require.ErrorIs(t, err, infraErr)
	})

	t.Run("balance read failure is wrapped", func(t *testing.T) {
		svc, store := newMockedService(t)
		store.EXPECT().
			BalanceOf(gomock.Any(), alice).
			Return(uint64(0), infraErr)

		_, err := svc.BalanceOf(ctx, alice)

		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	})

	t.Run("mint failure releases the reentrancy guard", func(t *testing.T) {
		svc, store := newMockedService(t)
		store.EXPECT().
			Mint(gomock.Any(), alice, uint64(5)).
			Return(models.SupplyResult{}, infraErr)

		err := svc.Mint(ctx, owner, alice, 5)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))

		// A second call must reach the store again rather than fail Reentrant.
		store.EXPECT().
			Mint(gomock.Any(), alice, uint64(5)).
			Return(models.SupplyResult{BalanceAfter: 5, TotalSupply: 5}, nil)
		require.NoError(t, svc.Mint(ctx, owner, alice, 5))
	})

	t.Run("approve failure surfaces the store error", func(t *testing.T) {
		svc, store := newMockedService(t)
		store.EXPECT().
			Approve(gomock.Any(), alice, bob, uint64(7)).
			Return(infraErr)

		err := svc.Approve(ctx, alice, bob, 7)

		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	})
}
