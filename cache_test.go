package grom_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grom-db/grom"
)

func TestCacheKey(t *testing.T) {
	t.Parallel()

	key := grom.CacheKey{
		NodeID:    "n1",
		EdgeType:  "NATIONAL",
		Direction: "outgoing",
		Operation: "nodes",
	}
	assert.Equal(t, "n1:NATIONAL:outgoing:nodes", key.String())
	assert.Equal(t, "n1:", key.Prefix())
}

func TestMemCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get_missing", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		v, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set_get", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
		time.Sleep(10 * time.Millisecond)
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, c.Delete(ctx, "k"))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("delete_prefix", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		require.NoError(t, c.Set(ctx, "n1:a", []byte("1"), 0))
		require.NoError(t, c.Set(ctx, "n1:b", []byte("2"), 0))
		require.NoError(t, c.Set(ctx, "n2:a", []byte("3"), 0))
		require.NoError(t, c.DeletePrefix(ctx, "n1:"))

		v, err := c.Get(ctx, "n1:a")
		require.NoError(t, err)
		assert.Nil(t, v)
		v, err = c.Get(ctx, "n2:a")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), v)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		c := grom.NewMemCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, c.Clear(ctx))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}
