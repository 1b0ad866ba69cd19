package relational

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

func newTestRepo(t *testing.T) (ports.UserRepository, *gorm.DB) {
	t.Helper()

	db, err := Open(context.Background(), Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "users.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	return NewUserRepository(db, time.Second), db
}

func newUser(email, username string) *domain.User {
	return &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$04$digest",
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	name := "Alice Liddell"
	in := newUser("alice@example.com", "alice")
	in.FullName = &name

	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	require.NotNil(t, byID.FullName)
	assert.Equal(t, name, *byID.FullName)
	assert.True(t, byID.IsActive)
	assert.Equal(t, domain.RoleCustomer, byID.Role)

	byEmail, err := repo.FindByEmail(ctx, "ALICE@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byIdent, err := repo.FindByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byIdent.ID)

	byIdent, err = repo.FindByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byIdent.ID)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "usernames are case-sensitive")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NoError(t, repo.Ping(ctx))
}

func TestUserRepository_Duplicates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("alice@example.com", "alice"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("alice@example.com", "alice2"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = repo.Create(ctx, newUser("ALICE@EXAMPLE.COM", "alice3"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail, "lower(email) index")

	_, err = repo.Create(ctx, newUser("other@example.com", "alice"))
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserRepository_Update(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, newUser("alice@example.com", "alice"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("bob@example.com", "bob"))
	require.NoError(t, err)

	name := "Alice"
	alice.Email = "alice.new@example.com"
	alice.FullName = &name
	alice.PasswordHash = "$2a$04$other"
	require.NoError(t, repo.Update(ctx, alice))

	got, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", got.Email)
	assert.Equal(t, "$2a$04$other", got.PasswordHash)
	require.NotNil(t, got.FullName)

	alice.FullName = nil
	require.NoError(t, repo.Update(ctx, alice))
	got, err = repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FullName)

	alice.Email = "bob@example.com"
	assert.ErrorIs(t, repo.Update(ctx, alice), domain.ErrDuplicateEmail)

	ghost := newUser("ghost@example.com", "ghost")
	ghost.ID = 9999
	assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrUserNotFound)
}

func TestOpen_MigrationFailure(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })
	gooseUp = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	_, err := Open(context.Background(), Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "users.db"),
	}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate")
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverPostgres}, zerolog.Nop())
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "oracle"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClassifyUnique(t *testing.T) {
	assert.ErrorIs(t, classifyUnique(&pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"}), domain.ErrDuplicateEmail)
	assert.ErrorIs(t, classifyUnique(&pgconn.PgError{Code: "23505", ConstraintName: "ux_users_username"}), domain.ErrDuplicateUsername)
	assert.Nil(t, classifyUnique(&pgconn.PgError{Code: "23503"}))
	assert.Nil(t, classifyUnique(errors.New("disk full")))

	// The detail echoes the duplicated value; only the constraint name counts.
	assert.ErrorIs(t, classifyUnique(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_users_username",
		Detail:         "Key (username)=(email_fan) already exists.",
	}), domain.ErrDuplicateUsername)

	sqliteCases := []struct {
		msg  string
		want error
	}{
		{"constraint failed: UNIQUE constraint failed: users.username (2067)", domain.ErrDuplicateUsername},
		{"UNIQUE constraint failed: users.email", domain.ErrDuplicateEmail},
		{"constraint failed: UNIQUE constraint failed: index 'ux_users_email' (2067)", domain.ErrDuplicateEmail},
		{"UNIQUE constraint failed: users.id", domain.ErrUserExists},
	}
	for _, tc := range sqliteCases {
		assert.ErrorIs(t, classifyUnique(errors.New(tc.msg)), tc.want, tc.msg)
	}
}
