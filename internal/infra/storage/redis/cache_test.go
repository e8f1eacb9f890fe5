package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/cachestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Cache(t *testing.T) {
	t.Run("should report missing keys", func(t *testing.T) {
		c, _ := setupTestClient(t)

		_, err := c.Read(t.Context(), "pending:0x1")
		assert.ErrorIs(t, err, cachestore.ErrNotFound)
	})

	t.Run("should write through the updater with ttl", func(t *testing.T) {
		c, mr := setupTestClient(t, WithCacheTTL(time.Minute))
		ctx := t.Context()

		err := c.Write(ctx, "info:0x1", func(old []byte, found bool) ([]byte, error) {
			assert.False(t, found)
			return []byte("v1"), nil
		})
		require.NoError(t, err)

		err = c.Write(ctx, "info:0x1", func(old []byte, found bool) ([]byte, error) {
			assert.True(t, found)
			return append(old, "+v2"...), nil
		})
		require.NoError(t, err)

		val, err := c.Read(ctx, "info:0x1")
		require.NoError(t, err)
		assert.Equal(t, "v1+v2", string(val))
		assert.Equal(t, time.Minute, mr.TTL("walletsync:cache:info:0x1"))
	})

	t.Run("should leave the key untouched on skip", func(t *testing.T) {
		c, mr := setupTestClient(t)
		require.NoError(t, mr.Set("walletsync:cache:k", "kept"))

		err := c.Write(t.Context(), "k", func([]byte, bool) ([]byte, error) {
			return []byte("lost"), cachestore.ErrSkipWrite
		})
		require.NoError(t, err)

		got, _ := mr.Get("walletsync:cache:k")
		assert.Equal(t, "kept", got)
	})

	t.Run("should propagate updater errors", func(t *testing.T) {
		c, _ := setupTestClient(t)
		errBoom := errors.New("boom")

		err := c.Write(t.Context(), "k", func([]byte, bool) ([]byte, error) {
			return nil, errBoom
		})
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("should retry on a concurrent write", func(t *testing.T) {
		c, _ := setupTestClient(t)
		ctx := t.Context()

		calls := 0
		err := c.Write(ctx, "k", func(old []byte, _ bool) ([]byte, error) {
			calls++
			if calls == 1 {
				// Another writer lands between read and commit.
				require.NoError(t, c.conn.Set(ctx, "walletsync:cache:k", "theirs", 0).Err())
				return []byte("stale"), nil
			}
			return append(old, "+ours"...), nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)

		val, err := c.Read(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "theirs+ours", string(val))
	})

	t.Run("should invalidate keys", func(t *testing.T) {
		c, mr := setupTestClient(t)
		require.NoError(t, mr.Set("walletsync:cache:a", "1"))
		require.NoError(t, mr.Set("walletsync:cache:b", "2"))

		require.NoError(t, c.Invalidate(t.Context(), "a", "b", "missing"))
		require.NoError(t, c.Invalidate(t.Context()))

		assert.False(t, mr.Exists("walletsync:cache:a"))
		assert.False(t, mr.Exists("walletsync:cache:b"))
	})

	t.Run("should back a typed store", func(t *testing.T) {
		c, _ := setupTestClient(t)
		typed := cachestore.NewTyped[[]string](c)
		ctx := t.Context()

		err := typed.Write(ctx, "owners", func(old []string, _ bool) ([]string, error) {
			return append(old, "0xA"), nil
		})
		require.NoError(t, err)

		got, err := typed.Read(ctx, "owners")
		require.NoError(t, err)
		assert.Equal(t, []string{"0xA"}, got)
	})
}
