package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authcore-io/authcore/users"
	"github.com/authcore-io/authcore/users/repofake"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := users.HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, users.CheckPasswordHash("s3cret", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}

func TestFakeUserManager(t *testing.T) {
	manager := fakeusermanager.NewFakeUserManager()
	hash, err := users.HashPassword("wonderland")
	require.NoError(t, err)
	manager.Add(&users.User{ID: "user-1", Username: "alice", PasswordHash: hash})

	t.Run("valid credentials return the user ID", func(t *testing.T) {
		userID, err := manager.AuthenticateUser("alice", "wonderland")
		require.NoError(t, err)
		require.Equal(t, "user-1", userID)
	})

	t.Run("bad password returns empty without error", func(t *testing.T) {
		userID, err := manager.AuthenticateUser("alice", "queen-of-hearts")
		require.NoError(t, err)
		require.Empty(t, userID)
	})

	t.Run("unknown username returns empty", func(t *testing.T) {
		userID, err := manager.AuthenticateUser("bob", "x")
		require.NoError(t, err)
		require.Empty(t, userID)
	})

	t.Run("lookup by ID", func(t *testing.T) {
		user, err := manager.GetUser("user-1")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)

		_, err = manager.GetUser("nobody")
		require.Error(t, err)
	})
}
