package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()

	t.Run("membership", func(t *testing.T) {
		store := NewMemoryRevocationStore()

		revoked, err := store.IsRevoked(ctx, "token-a")
		assert.NoError(t, err)
		assert.False(t, revoked)

		assert.NoError(t, store.Revoke(ctx, "token-a", time.Minute))

		revoked, err = store.IsRevoked(ctx, "token-a")
		assert.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = store.IsRevoked(ctx, "token-b")
		assert.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		store := NewMemoryRevocationStore()

		assert.NoError(t, store.Revoke(ctx, "token-a", time.Minute))
		assert.NoError(t, store.Revoke(ctx, "token-a", time.Minute))

		revoked, err := store.IsRevoked(ctx, "token-a")
		assert.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("entries expire with their TTL", func(t *testing.T) {
		store := NewMemoryRevocationStore()

		assert.NoError(t, store.Revoke(ctx, "token-a", 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		revoked, err := store.IsRevoked(ctx, "token-a")
		assert.NoError(t, err)
		assert.False(t, revoked)
	})
}
