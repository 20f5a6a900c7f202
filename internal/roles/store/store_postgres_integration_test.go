//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"tokengate/internal/roles/models"
	"tokengate/internal/roles/store"
	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
	"tokengate/pkg/testutil/containers"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000aa")
	operator = domain.Address("0x00000000000000000000000000000000000000bb")
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateAll(ctx))
}

func (s *PostgresStoreSuite) TestOwnerLifecycle() {
	ctx := context.Background()

	_, err := s.store.Owner(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound, "unseeded registry has no owner")

	s.Require().NoError(s.store.SetOwner(ctx, owner))
	got, err := s.store.Owner(ctx)
	s.Require().NoError(err)
	s.Equal(owner, got)

	// Ownership transfer overwrites the singleton row.
	s.Require().NoError(s.store.SetOwner(ctx, operator))
	got, err = s.store.Owner(ctx)
	s.Require().NoError(err)
	s.Equal(operator, got)
}

func (s *PostgresStoreSuite) TestRoleGrantAndRevoke() {
	ctx := context.Background()

	has, err := s.store.HasRole(ctx, operator, models.RoleWhitelister)
	s.Require().NoError(err)
	s.False(has)

	s.Require().NoError(s.store.SetRole(ctx, operator, models.RoleWhitelister, true))
	has, err = s.store.HasRole(ctx, operator, models.RoleWhitelister)
	s.Require().NoError(err)
	s.True(has)

	has, err = s.store.HasRole(ctx, operator, models.RoleBlacklister)
	s.Require().NoError(err)
	s.False(has, "roles are tracked independently")

	// Re-granting is idempotent, revoking removes the row.
	s.Require().NoError(s.store.SetRole(ctx, operator, models.RoleWhitelister, true))
	s.Require().NoError(s.store.SetRole(ctx, operator, models.RoleWhitelister, false))
	has, err = s.store.HasRole(ctx, operator, models.RoleWhitelister)
	s.Require().NoError(err)
	s.False(has)

	// Revoking an absent role is a no-op, not an error.
	s.Require().NoError(s.store.SetRole(ctx, operator, models.RoleBlacklister, false))
}

func (s *PostgresStoreSuite) TestOwnerSharesPolicyRow() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetOwner(ctx, owner))

	var paused bool
	err := s.postgres.QueryRow(ctx,
		`SELECT paused FROM ledger_policy WHERE id = 1`).Scan(&paused)
	s.Require().NoError(err)
	s.False(paused, "setting the owner seeds policy defaults on the same row")
}
