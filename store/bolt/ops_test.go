package bolt

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/store"
)

// fakeResult feeds canned records through the subset of
// ResultWithContext that collect consumes.
type fakeResult struct {
	neo4j.ResultWithContext
	recs []*db.Record
	idx  int
}

func (r *fakeResult) Next(ctx context.Context) bool {
	if r.idx >= len(r.recs) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeResult) Record() *db.Record { return r.recs[r.idx-1] }

func (r *fakeResult) Err() error { return nil }

// fakeRunner records every statement and pops one canned result set
// per Run call.
type fakeRunner struct {
	cyphers []string
	params  []map[string]any
	queue   [][]*db.Record
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	f.cyphers = append(f.cyphers, cypher)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	var recs []*db.Record
	if len(f.queue) > 0 {
		recs, f.queue = f.queue[0], f.queue[1:]
	}
	return &fakeResult{recs: recs}, nil
}

func fakeOps(f *fakeRunner) ops {
	return ops{with: func(ctx context.Context, fn func(r runner) error) error {
		return fn(f)
	}}
}

func rec(keys []string, values []any) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

func TestOpsCreateNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("statement_and_identity", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		o := fakeOps(f)

		n, err := o.CreateNode(ctx, "User", map[string]any{"name": "alice"})
		require.NoError(t, err)
		assert.Equal(t, "User", n.Label)
		assert.NotEmpty(t, n.ID)

		require.Len(t, f.cyphers, 1)
		assert.Equal(t, "CREATE (n:User) SET n = $props", f.cyphers[0])
		props, ok := f.params[0]["props"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", props["name"])
		assert.Equal(t, string(n.ID), props[idKey])
	})

	t.Run("invalid_label", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		o := fakeOps(f)

		_, err := o.CreateNode(ctx, "User Name", nil)
		assert.ErrorContains(t, err, "invalid label")
		assert.Empty(t, f.cyphers)
	})

	t.Run("reserved_id_key", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		o := fakeOps(f)

		_, err := o.CreateNode(ctx, "User", map[string]any{idKey: "forged"})
		assert.ErrorContains(t, err, "reserved")
		assert.Empty(t, f.cyphers)
	})
}

func TestOpsNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("found_strips_id", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"label", "props"}, []any{"User", map[string]any{idKey: "n1", "name": "alice"}}),
		}}}
		o := fakeOps(f)

		n, err := o.Node(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, store.NodeID("n1"), n.ID)
		assert.Equal(t, "User", n.Label)
		assert.Equal(t, "alice", n.Props["name"])
		assert.NotContains(t, n.Props, idKey)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{nil}}
		o := fakeOps(f)

		_, err := o.Node(ctx, "absent")
		assert.True(t, grom.IsNotFound(err))
	})

	t.Run("run_error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		o := fakeOps(&fakeRunner{err: boom})

		_, err := o.Node(ctx, "n1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestOpsDeleteNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"deleted"}, []any{int64(1)}),
		}}}
		assert.NoError(t, fakeOps(f).DeleteNode(ctx, "n1"))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"deleted"}, []any{int64(0)}),
		}}}
		assert.True(t, grom.IsNotFound(fakeOps(f).DeleteNode(ctx, "n1")))
	})
}

func TestOpsCreateEdge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("statement_and_identity", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"created"}, []any{int64(1)}),
		}}}
		o := fakeOps(f)

		e, err := o.CreateEdge(ctx, "a", "b", "NATIONAL", map[string]any{"since": "2020"})
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, store.NodeID("a"), e.From)
		assert.Equal(t, store.NodeID("b"), e.To)
		assert.Equal(t, "NATIONAL", e.Type)

		require.Len(t, f.cyphers, 1)
		assert.Contains(t, f.cyphers[0], "CREATE (a)-[r:NATIONAL]->(b)")
		assert.Equal(t, "a", f.params[0]["from"])
		assert.Equal(t, "b", f.params[0]["to"])
		props, ok := f.params[0]["props"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, string(e.ID), props[idKey])
	})

	t.Run("missing_endpoint", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"created"}, []any{int64(0)}),
		}}}
		_, err := fakeOps(f).CreateEdge(ctx, "a", "absent", "NATIONAL", nil)
		assert.True(t, grom.IsNotFound(err))
	})

	t.Run("invalid_type", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		_, err := fakeOps(f).CreateEdge(ctx, "a", "b", "NATIONAL;DROP", nil)
		assert.ErrorContains(t, err, "invalid label")
		assert.Empty(t, f.cyphers)
	})

	t.Run("reserved_id_key", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		_, err := fakeOps(f).CreateEdge(ctx, "a", "b", "NATIONAL", map[string]any{idKey: "forged"})
		assert.ErrorContains(t, err, "reserved")
		assert.Empty(t, f.cyphers)
	})
}

func TestOpsFindEdges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("direction_patterns", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name    string
			typ     string
			dir     store.Direction
			pattern string
		}{
			{"outgoing", "NATIONAL", store.Outgoing, "(n {_id: $id})-[r:NATIONAL]->()"},
			{"incoming", "NATIONAL", store.Incoming, "(n {_id: $id})<-[r:NATIONAL]-()"},
			{"both_untyped", "", store.Both, "(n {_id: $id})-[r]-()"},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				f := &fakeRunner{}
				_, err := fakeOps(f).FindEdges(ctx, "n1", tt.typ, tt.dir)
				require.NoError(t, err)
				require.Len(t, f.cyphers, 1)
				assert.Contains(t, f.cyphers[0], tt.pattern)
				assert.Equal(t, "n1", f.params[0]["id"])
			})
		}
	})

	t.Run("rows_mapped_and_id_stripped", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"typ", "props", "src", "dst"},
				[]any{"NATIONAL", map[string]any{idKey: "e1", "since": "2020"}, "a", "b"}),
		}}}

		edges, err := fakeOps(f).FindEdges(ctx, "a", "NATIONAL", store.Outgoing)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, store.EdgeID("e1"), edges[0].ID)
		assert.Equal(t, store.NodeID("a"), edges[0].From)
		assert.Equal(t, store.NodeID("b"), edges[0].To)
		assert.Equal(t, "NATIONAL", edges[0].Type)
		assert.Equal(t, "2020", edges[0].Props["since"])
		assert.NotContains(t, edges[0].Props, idKey)
	})

	t.Run("invalid_type", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		_, err := fakeOps(f).FindEdges(ctx, "n1", "bad type", store.Outgoing)
		assert.ErrorContains(t, err, "invalid label")
		assert.Empty(t, f.cyphers)
	})
}

func TestOpsProperties(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("node_property_found", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"v"}, []any{"alice"}),
		}}}

		v, err := fakeOps(f).NodeProperty(ctx, "n1", "name")
		require.NoError(t, err)
		assert.Equal(t, "alice", v)
		assert.Equal(t, "name", f.params[0]["key"])
	})

	t.Run("null_value_is_not_found", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"v"}, []any{nil}),
		}}}

		_, err := fakeOps(f).NodeProperty(ctx, "n1", "missing")
		assert.True(t, grom.IsNotFound(err))
	})

	t.Run("missing_entity", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{nil}}
		_, err := fakeOps(f).EdgeProperty(ctx, "absent", "since")
		assert.True(t, grom.IsNotFound(err))
	})

	t.Run("set_property", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"found"}, []any{int64(1)}),
		}}}

		require.NoError(t, fakeOps(f).SetNodeProperty(ctx, "n1", "age", 30))
		m, ok := f.params[0]["m"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 30, m["age"])
	})

	t.Run("set_property_missing_entity", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"found"}, []any{int64(0)}),
		}}}
		err := fakeOps(f).SetNodeProperty(ctx, "absent", "age", 30)
		assert.True(t, grom.IsNotFound(err))
	})

	t.Run("set_reserved_key", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{}
		err := fakeOps(f).SetNodeProperty(ctx, "n1", idKey, "forged")
		assert.ErrorContains(t, err, "reserved")
		assert.Empty(t, f.cyphers)
	})

	t.Run("delete_property_sends_null", func(t *testing.T) {
		t.Parallel()
		f := &fakeRunner{queue: [][]*db.Record{{
			rec([]string{"found"}, []any{int64(1)}),
		}}}

		require.NoError(t, fakeOps(f).DeleteNodeProperty(ctx, "n1", "age"))
		m, ok := f.params[0]["m"].(map[string]any)
		require.True(t, ok)
		v, present := m["age"]
		assert.True(t, present)
		assert.Nil(t, v)
	})
}
