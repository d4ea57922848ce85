package test_utils

import (
	"context"
	"testing"

	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// ContextWithUser returns a context carrying a freshly generated owner.
func ContextWithUser(email string) (context.Context, user.User) {
	u := user.User{
		Id:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
	}
	return user.WithUser(context.Background(), u), u
}

// InsertUser creates the owner row required by foreign keys.
func InsertUser(t *testing.T, db *pgxpool.Pool, email string) user.User {
	t.Helper()
	u, err := user.NewUserRepo(db).EnsureUser(context.Background(), uuid.New(), email)
	require.NoError(t, err)
	return u
}

// ContextFor returns a context carrying u as the current user.
func ContextFor(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}
