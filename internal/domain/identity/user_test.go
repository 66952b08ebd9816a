package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		u, err := NewUser("Asha", "asha@example.com", "+91-9000000003", "s3cret-pass", RoleUser)
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
		assert.True(t, u.CheckPassword("s3cret-pass"))
		assert.False(t, u.CheckPassword("wrong"))
		assert.False(t, u.IsAdmin())
		assert.True(t, u.Active)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("Asha", "not-an-email", "", "s3cret-pass", RoleUser)
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("Asha", "asha@example.com", "", "short", RoleUser)
		require.Error(t, err)
	})

	t.Run("admin role", func(t *testing.T) {
		u, err := NewUser("Root", "root@example.com", "", "s3cret-pass", RoleAdmin)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})
}

func TestRecordLogin(t *testing.T) {
	u, err := NewUser("Asha", "asha@example.com", "", "s3cret-pass", RoleUser)
	require.NoError(t, err)
	require.Nil(t, u.LastLoginAt)

	now := time.Now()
	u.RecordLogin(now)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, now, *u.LastLoginAt)
}
