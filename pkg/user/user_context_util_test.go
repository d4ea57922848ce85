package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	t.Run("should return session user and id", func(t *testing.T) {
		u := User{Id: uuid.New(), Email: "u1@example.com"}
		ctx := WithUser(context.Background(), u)

		current, err := CurrentUser(ctx)
		require.NoError(t, err)
		id, err := CurrentId(ctx)
		require.NoError(t, err)

		assert.Equal(t, u, current)
		assert.Equal(t, u.Id, id)
	})

	t.Run("should fail without session user", func(t *testing.T) {
		_, err := CurrentId(context.Background())
		assert.ErrorIs(t, err, ErrNoUser)
	})

	t.Run("should fail for user without id", func(t *testing.T) {
		ctx := WithUser(context.Background(), User{Email: "u1@example.com"})

		_, err := CurrentUser(ctx)
		assert.ErrorIs(t, err, ErrNoUser)
	})
}
