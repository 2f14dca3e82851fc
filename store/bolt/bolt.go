// Package bolt implements the remote GraphStore adapter for graph
// databases speaking the Bolt protocol (Neo4j, Memgraph).
//
// Nodes and edges carry a uuid under the _id property; labels and edge
// types are validated identifiers interpolated into Cypher, everything
// else travels as query parameters.
package bolt

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/store"
)

// idKey is the node/edge property holding the store-independent ID.
const idKey = "_id"

// validIdentifierRe validates labels and edge types before they are
// interpolated into Cypher text.
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validIdentifier(s string) error {
	if s == "" || len(s) > 128 || !validIdentifierRe.MatchString(s) {
		return fmt.Errorf("bolt: invalid label or edge type %q", s)
	}
	return nil
}

// Config holds the connection settings for a Bolt store.
type Config struct {
	URI      string // e.g. "bolt://localhost:7687"
	Username string
	Password string
}

// Store is the remote Bolt GraphStore.
type Store struct {
	ops
	driver neo4j.DriverWithContext
}

// Open connects to the graph database at cfg.URI. An empty username
// selects unauthenticated access.
func Open(cfg Config) (*Store, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("bolt: create driver: %w", err)
	}
	s := &Store{driver: driver}
	s.ops = ops{with: s.withSession}
	return s, nil
}

// Ping implements the store.GraphStore interface.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close implements the store.GraphStore interface.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

// runner abstracts sessions and explicit transactions; both sides run
// Cypher with a parameter map.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

// record is one row of a Cypher result, keyed by return alias.
type record map[string]any

func collect(ctx context.Context, res neo4j.ResultWithContext) ([]record, error) {
	var out []record
	for res.Next(ctx) {
		rec := res.Record()
		row := make(record, len(rec.Keys))
		for _, key := range rec.Keys {
			v, _ := rec.Get(key)
			row[key] = v
		}
		out = append(out, row)
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("bolt: result: %w", err)
	}
	return out, nil
}

func run(ctx context.Context, r runner, cypher string, params map[string]any) ([]record, error) {
	res, err := r.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("bolt: query: %w", err)
	}
	return collect(ctx, res)
}

// ops implements store.Conn over a runner factory. The Store opens one
// session per call; a transaction reuses its explicit transaction.
type ops struct {
	with func(ctx context.Context, fn func(r runner) error) error
}

func (s *Store) withSession(ctx context.Context, fn func(r runner) error) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	return fn(sessionRunner{session})
}

// sessionRunner adapts a session's variadic Run signature to the
// runner interface shared with explicit transactions.
type sessionRunner struct {
	s neo4j.SessionWithContext
}

func (sr sessionRunner) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	return sr.s.Run(ctx, cypher, params)
}

// Tx implements the store.GraphStore interface.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("bolt: begin: %w", err)
	}
	return &boltTx{
		ops: ops{with: func(ctx context.Context, fn func(r runner) error) error {
			return fn(tx)
		}},
		tx:      tx,
		session: session,
	}, nil
}

type boltTx struct {
	ops
	tx      neo4j.ExplicitTransaction
	session neo4j.SessionWithContext
}

// Commit implements the store.Tx interface.
func (t *boltTx) Commit() error {
	ctx := context.Background()
	defer t.session.Close(ctx)
	return t.tx.Commit(ctx)
}

// Rollback implements the store.Tx interface.
func (t *boltTx) Rollback() error {
	ctx := context.Background()
	defer t.session.Close(ctx)
	return t.tx.Rollback(ctx)
}

// CreateNode implements the store.Conn interface.
func (o ops) CreateNode(ctx context.Context, label string, props map[string]any) (store.Node, error) {
	if err := validIdentifier(label); err != nil {
		return store.Node{}, err
	}
	if _, ok := props[idKey]; ok {
		return store.Node{}, fmt.Errorf("bolt: property key %q is reserved", idKey)
	}
	id := uuid.NewString()
	all := make(map[string]any, len(props)+1)
	for k, v := range props {
		all[k] = v
	}
	all[idKey] = id
	var node store.Node
	err := o.with(ctx, func(r runner) error {
		_, err := run(ctx, r,
			fmt.Sprintf("CREATE (n:%s) SET n = $props", label),
			map[string]any{"props": all})
		return err
	})
	if err != nil {
		return store.Node{}, err
	}
	node = store.Node{ID: store.NodeID(id), Label: label, Props: props}
	return node, nil
}

// Node implements the store.Conn interface.
func (o ops) Node(ctx context.Context, id store.NodeID) (store.Node, error) {
	var node store.Node
	err := o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r,
			"MATCH (n {_id: $id}) RETURN labels(n)[0] AS label, properties(n) AS props",
			map[string]any{"id": string(id)})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return grom.NewNotFoundErrorWithID("node", string(id))
		}
		label, _ := rows[0]["label"].(string)
		props, _ := rows[0]["props"].(map[string]any)
		delete(props, idKey)
		node = store.Node{ID: id, Label: label, Props: props}
		return nil
	})
	return node, err
}

// DeleteNode implements the store.Conn interface.
func (o ops) DeleteNode(ctx context.Context, id store.NodeID) error {
	return o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r,
			"MATCH (n {_id: $id}) DETACH DELETE n RETURN count(n) AS deleted",
			map[string]any{"id": string(id)})
		if err != nil {
			return err
		}
		if deleted(rows) == 0 {
			return grom.NewNotFoundErrorWithID("node", string(id))
		}
		return nil
	})
}

// CreateEdge implements the store.Conn interface.
func (o ops) CreateEdge(ctx context.Context, from, to store.NodeID, typ string, props map[string]any) (store.Edge, error) {
	if err := validIdentifier(typ); err != nil {
		return store.Edge{}, err
	}
	if _, ok := props[idKey]; ok {
		return store.Edge{}, fmt.Errorf("bolt: property key %q is reserved", idKey)
	}
	id := uuid.NewString()
	all := make(map[string]any, len(props)+1)
	for k, v := range props {
		all[k] = v
	}
	all[idKey] = id
	var edge store.Edge
	err := o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r,
			fmt.Sprintf(
				"MATCH (a {_id: $from}), (b {_id: $to}) CREATE (a)-[r:%s]->(b) SET r = $props RETURN count(r) AS created",
				typ),
			map[string]any{"from": string(from), "to": string(to), "props": all})
		if err != nil {
			return err
		}
		var created int64
		if len(rows) > 0 {
			created, _ = rows[0]["created"].(int64)
		}
		if created == 0 {
			return grom.NewNotFoundError("node")
		}
		edge = store.Edge{ID: store.EdgeID(id), From: from, To: to, Type: typ, Props: props}
		return nil
	})
	return edge, err
}

// DeleteEdge implements the store.Conn interface.
func (o ops) DeleteEdge(ctx context.Context, id store.EdgeID) error {
	return o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r,
			"MATCH ()-[r {_id: $id}]->() DELETE r RETURN count(r) AS deleted",
			map[string]any{"id": string(id)})
		if err != nil {
			return err
		}
		if deleted(rows) == 0 {
			return grom.NewNotFoundErrorWithID("edge", string(id))
		}
		return nil
	})
}

// FindEdges implements the store.Conn interface.
func (o ops) FindEdges(ctx context.Context, id store.NodeID, typ string, dir store.Direction) ([]store.Edge, error) {
	relPattern := "[r]"
	if typ != "" {
		if err := validIdentifier(typ); err != nil {
			return nil, err
		}
		relPattern = fmt.Sprintf("[r:%s]", typ)
	}
	var pattern string
	switch dir {
	case store.Outgoing:
		pattern = fmt.Sprintf("(n {_id: $id})-%s->()", relPattern)
	case store.Incoming:
		pattern = fmt.Sprintf("(n {_id: $id})<-%s-()", relPattern)
	default:
		pattern = fmt.Sprintf("(n {_id: $id})-%s-()", relPattern)
	}
	cypher := fmt.Sprintf(
		"MATCH %s RETURN type(r) AS typ, properties(r) AS props, startNode(r)._id AS src, endNode(r)._id AS dst",
		pattern)
	var edges []store.Edge
	err := o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r, cypher, map[string]any{"id": string(id)})
		if err != nil {
			return err
		}
		for _, row := range rows {
			props, _ := row["props"].(map[string]any)
			eid, _ := props[idKey].(string)
			delete(props, idKey)
			typ, _ := row["typ"].(string)
			src, _ := row["src"].(string)
			dst, _ := row["dst"].(string)
			edges = append(edges, store.Edge{
				ID:    store.EdgeID(eid),
				From:  store.NodeID(src),
				To:    store.NodeID(dst),
				Type:  typ,
				Props: props,
			})
		}
		return nil
	})
	return edges, err
}

// NodeProperty implements the store.Conn interface.
func (o ops) NodeProperty(ctx context.Context, id store.NodeID, key string) (any, error) {
	return o.property(ctx, "MATCH (n {_id: $id}) RETURN n[$key] AS v", string(id), key)
}

// SetNodeProperty implements the store.Conn interface.
func (o ops) SetNodeProperty(ctx context.Context, id store.NodeID, key string, v any) error {
	return o.setProperty(ctx, "MATCH (n {_id: $id}) SET n += $m RETURN count(n) AS found", "node", string(id), key, v)
}

// DeleteNodeProperty implements the store.Conn interface. Cypher
// removes a property when it is set to null through a map merge.
func (o ops) DeleteNodeProperty(ctx context.Context, id store.NodeID, key string) error {
	return o.setProperty(ctx, "MATCH (n {_id: $id}) SET n += $m RETURN count(n) AS found", "node", string(id), key, nil)
}

// EdgeProperty implements the store.Conn interface.
func (o ops) EdgeProperty(ctx context.Context, id store.EdgeID, key string) (any, error) {
	return o.property(ctx, "MATCH ()-[r {_id: $id}]->() RETURN r[$key] AS v", string(id), key)
}

// SetEdgeProperty implements the store.Conn interface.
func (o ops) SetEdgeProperty(ctx context.Context, id store.EdgeID, key string, v any) error {
	return o.setProperty(ctx, "MATCH ()-[r {_id: $id}]->() SET r += $m RETURN count(r) AS found", "edge", string(id), key, v)
}

// DeleteEdgeProperty implements the store.Conn interface.
func (o ops) DeleteEdgeProperty(ctx context.Context, id store.EdgeID, key string) error {
	return o.setProperty(ctx, "MATCH ()-[r {_id: $id}]->() SET r += $m RETURN count(r) AS found", "edge", string(id), key, nil)
}

func (o ops) property(ctx context.Context, cypher, id, key string) (any, error) {
	var v any
	err := o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r, cypher, map[string]any{"id": id, "key": key})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return grom.NewNotFoundErrorWithID("entity", id)
		}
		v = rows[0]["v"]
		if v == nil {
			return grom.NewNotFoundError("property " + key)
		}
		return nil
	})
	return v, err
}

func (o ops) setProperty(ctx context.Context, cypher, kind, id, key string, v any) error {
	if key == idKey {
		return fmt.Errorf("bolt: property key %q is reserved", idKey)
	}
	return o.with(ctx, func(r runner) error {
		rows, err := run(ctx, r, cypher, map[string]any{
			"id": id,
			"m":  map[string]any{key: v},
		})
		if err != nil {
			return err
		}
		var found int64
		if len(rows) > 0 {
			found, _ = rows[0]["found"].(int64)
		}
		if found == 0 {
			return grom.NewNotFoundErrorWithID(kind, id)
		}
		return nil
	})
}

func deleted(rows []record) int64 {
	if len(rows) == 0 {
		return 0
	}
	n, _ := rows[0]["deleted"].(int64)
	return n
}

var (
	_ store.GraphStore = (*Store)(nil)
	_ store.Tx         = (*boltTx)(nil)
)
