package auth_test

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"github.com/tradekit/go-auth"
)

// setupUsersRepo opens an in-memory SQLite database, applies the
// embedded schema migrations, and returns a repository bound to it.
func setupUsersRepo(t *testing.T) (auth.Users, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	ctx := context.Background()

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	require.NoError(t, err)

	migrations := migrate.NewMigrations()
	require.NoError(t, migrations.Discover(migrationsFS))

	migrator := migrate.NewMigrator(db, migrations)
	require.NoError(t, migrator.Init(ctx))

	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return auth.NewUsersRepository(db), db
}

func registerTestUser(t *testing.T, repo auth.Users, username, email string) *auth.User {
	t.Helper()

	created, err := repo.Register(context.Background(), &auth.User{
		FullName:     "Jane Doe",
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$12$not-a-real-hash",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	return created
}

func TestUsersRepositoryRegisterDefaults(t *testing.T) {
	repo, _ := setupUsersRepo(t)

	created := registerTestUser(t, repo, "trader.jane", "jane@example.com")

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, auth.RoleViewer, created.Role)
	assert.Equal(t, auth.UserStatusActive, created.Status)
}

func TestUsersRepositoryGetByIdentifier(t *testing.T) {
	repo, _ := setupUsersRepo(t)
	ctx := context.Background()

	created := registerTestUser(t, repo, "trader.jane", "jane@example.com")

	t.Run("resolves by email", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("resolves by username", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "trader.jane")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("resolves by id", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, created.Username, found.Username)
	})

	t.Run("unknown identifier is not found", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "nobody@example.com")
		assert.Nil(t, found)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRepositoryLoginBookkeeping(t *testing.T) {
	repo, _ := setupUsersRepo(t)
	ctx := context.Background()

	created := registerTestUser(t, repo, "trader.jane", "jane@example.com")
	subject := created.ID.String()

	reload := func(t *testing.T) *auth.User {
		t.Helper()
		user, err := repo.GetBySubject(ctx, subject)
		require.NoError(t, err)
		return user
	}

	require.NoError(t, repo.TrackAttemptedLogin(ctx, reload(t)))
	require.NoError(t, repo.TrackAttemptedLogin(ctx, reload(t)))

	user := reload(t)
	assert.Equal(t, 2, user.LoginAttempts)
	assert.NotNil(t, user.LoginAttemptAt)
	assert.Nil(t, user.LoggedInAt)

	require.NoError(t, repo.TrackSuccessfulLogin(ctx, user))

	user = reload(t)
	assert.Equal(t, 0, user.LoginAttempts)
	assert.Nil(t, user.LoginAttemptAt)
	assert.NotNil(t, user.LoggedInAt)
}

func TestUsersRepositoryUpdateStatus(t *testing.T) {
	repo, _ := setupUsersRepo(t)
	ctx := context.Background()

	created := registerTestUser(t, repo, "trader.jane", "jane@example.com")

	_, err := repo.UpdateStatus(ctx, created.ID, auth.UserStatusSuspended)
	require.NoError(t, err)

	user, err := repo.GetBySubject(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, auth.UserStatusSuspended, user.Status)
}

func TestUsersRepositorySoftDelete(t *testing.T) {
	repo, db := setupUsersRepo(t)
	ctx := context.Background()

	created := registerTestUser(t, repo, "trader.jane", "jane@example.com")

	_, err := repo.GetBySubject(ctx, created.ID.String())
	require.NoError(t, err)

	_, err = db.NewDelete().
		Model((*auth.User)(nil)).
		Where("id = ?", created.ID.String()).
		Exec(ctx)
	require.NoError(t, err)

	t.Run("subject lookup misses", func(t *testing.T) {
		user, err := repo.GetBySubject(ctx, created.ID.String())
		assert.Nil(t, user)
		assert.Error(t, err)
	})

	t.Run("identifier lookup misses", func(t *testing.T) {
		user, err := repo.GetByIdentifier(ctx, "jane@example.com")
		assert.Nil(t, user)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}
