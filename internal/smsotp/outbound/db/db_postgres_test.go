package db

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/valueobject"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

func TestDB_Postgres(t *testing.T) {
	if os.Getenv("DONT_USE_NETWORK") != "" {
		t.Skip("test requires network egress")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// Arrange
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("smsotp"),
		postgres.WithUsername("smsotp"),
		postgres.WithPassword("smsotp"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewDB(pool, instrument.NewNoop())
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migration is repeatable")

	_, err = pool.Exec(ctx, `
INSERT INTO smsotp_users (id, realm, username, password_hash, attributes, enabled)
VALUES (42, 'acme', 'alice', '$2a$10$hash', '{"mobile_number":["+15550001"]}', TRUE)`)
	require.NoError(t, err)

	// Act
	got, err := s.GetUserByUsername(ctx, entity.NewIdentityKey("ACME", "Alice"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &entity.User{
		ID: 42, Realm: "acme", Username: "alice", PasswordHash: "$2a$10$hash",
		Attributes: valueobject.Attributes{"mobile_number": {"+15550001"}}, Enabled: true,
	}, got)

	_, err = s.GetUserByUsername(ctx, entity.NewIdentityKey("acme", "bob"))
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
