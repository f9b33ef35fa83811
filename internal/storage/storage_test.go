package storage

import (
	"context"
	"testing"

	"user_service/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSameUser(t *testing.T, want, got models.User) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Mail, got.Mail)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
}

// runStorageSuite exercises the behaviour every backend must share.
func runStorageSuite(t *testing.T, st Storage) {
	ctx := context.Background()

	t.Run("create then get returns the same record", func(t *testing.T) {
		created, err := st.CreateUser(ctx, "alice@example.com", "hash-a")
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "alice@example.com", created.Mail)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := st.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assertSameUser(t, created, got)
	})

	t.Run("duplicate mail", func(t *testing.T) {
		_, err := st.CreateUser(ctx, "dup@example.com", "hash")
		require.NoError(t, err)

		_, err = st.CreateUser(ctx, "dup@example.com", "other")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("credentials by mail", func(t *testing.T) {
		created, err := st.CreateUser(ctx, "bob@example.com", "hash-b")
		require.NoError(t, err)

		cred, err := st.GetCredentialsByMail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, cred.UserID)
		assert.Equal(t, "hash-b", cred.PasswordHash)

		_, err = st.GetCredentialsByMail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("delete returns the row and removes it", func(t *testing.T) {
		created, err := st.CreateUser(ctx, "carol@example.com", "hash-c")
		require.NoError(t, err)

		deleted, err := st.DeleteUser(ctx, created.ID)
		require.NoError(t, err)
		assertSameUser(t, created, deleted)

		_, err = st.GetUserByID(ctx, created.ID)
		require.ErrorIs(t, err, ErrUserNotFound)

		_, err = st.DeleteUser(ctx, created.ID)
		require.ErrorIs(t, err, ErrUserNotFound)

		_, err = st.GetCredentialsByMail(ctx, "carol@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.GetUserByID(ctx, uuid.Must(uuid.NewV4()))
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		require.NoError(t, st.Migrate(ctx))
	})
}
