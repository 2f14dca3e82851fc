package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grom-db/grom/store"
)

func TestPrefixed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty_prefix_is_identity", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemStore()
		assert.Same(t, store.GraphStore(s), store.Prefixed(s, ""))
	})

	t.Run("labels_and_edge_types", func(t *testing.T) {
		t.Parallel()
		inner := store.NewMemStore()
		p := store.Prefixed(inner, "app_")

		n, err := p.CreateNode(ctx, "User", map[string]any{"name": "alice"})
		require.NoError(t, err)
		assert.Equal(t, "User", n.Label)

		// The inner store sees the prefixed label.
		raw, err := inner.Node(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "app_User", raw.Label)

		// Reads through the wrapper strip it again.
		got, err := p.Node(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "User", got.Label)

		c, err := p.CreateNode(ctx, "Country", nil)
		require.NoError(t, err)
		e, err := p.CreateEdge(ctx, n.ID, c.ID, "NATIONAL", nil)
		require.NoError(t, err)
		assert.Equal(t, "NATIONAL", e.Type)

		rawEdges, err := inner.FindEdges(ctx, n.ID, "app_NATIONAL", store.Outgoing)
		require.NoError(t, err)
		assert.Len(t, rawEdges, 1)

		edges, err := p.FindEdges(ctx, n.ID, "NATIONAL", store.Outgoing)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "NATIONAL", edges[0].Type)
	})

	t.Run("empty_type_still_matches_all", func(t *testing.T) {
		t.Parallel()
		inner := store.NewMemStore()
		p := store.Prefixed(inner, "app_")

		a, _ := p.CreateNode(ctx, "User", nil)
		b, _ := p.CreateNode(ctx, "User", nil)
		_, err := p.CreateEdge(ctx, a.ID, b.ID, "FRIEND", nil)
		require.NoError(t, err)

		edges, err := p.FindEdges(ctx, a.ID, "", store.Both)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "FRIEND", edges[0].Type)
	})

	t.Run("transactions", func(t *testing.T) {
		t.Parallel()
		inner := store.NewMemStore()
		p := store.Prefixed(inner, "app_")

		tx, err := p.Tx(ctx)
		require.NoError(t, err)
		n, err := tx.CreateNode(ctx, "User", nil)
		require.NoError(t, err)
		assert.Equal(t, "User", n.Label)
		require.NoError(t, tx.Commit())

		raw, err := inner.Node(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "app_User", raw.Label)
	})
}

func TestDirection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "outgoing", store.Outgoing.String())
	assert.Equal(t, "incoming", store.Incoming.String())
	assert.Equal(t, "both", store.Both.String())

	assert.Equal(t, store.Incoming, store.Outgoing.Reverse())
	assert.Equal(t, store.Outgoing, store.Incoming.Reverse())
	assert.Equal(t, store.Both, store.Both.Reverse())
}
