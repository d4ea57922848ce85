package user_test

import (
	"context"
	"os"
	"testing"

	"github.com/birthdayreminder/birthdayreminder/internal/test_utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *user.UserRepoImpl) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, user.NewUserRepo(db)
}

func TestUserRepoImpl_EnsureUser(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	id := uuid.New()

	// when
	created, err := repo.EnsureUser(ctx, id, "old@example.com")
	require.NoError(t, err)
	_, err = repo.UpdateDisplayName(ctx, id, "Ana")
	require.NoError(t, err)
	updated, err := repo.EnsureUser(ctx, id, "new@example.com")
	require.NoError(t, err)

	// then
	assert.Equal(t, id, created.Id)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Ana", updated.DisplayName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUserRepoImpl_GetUser(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = repo.UpdateDisplayName(ctx, uuid.New(), "Nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
