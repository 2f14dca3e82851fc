// Package lite implements the embedded GraphStore adapter on a local
// SQLite database. Nodes, edges and their properties live in four
// tables; property values are msgpack-encoded blobs.
package lite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/store"
)

const ddl = `
CREATE TABLE IF NOT EXISTS nodes (
	id    TEXT PRIMARY KEY,
	label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	id   TEXT PRIMARY KEY,
	src  TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	dst  TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS node_props (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	key     TEXT NOT NULL,
	value   BLOB,
	PRIMARY KEY (node_id, key)
);
CREATE TABLE IF NOT EXISTS edge_props (
	edge_id TEXT NOT NULL REFERENCES edges(id) ON DELETE CASCADE,
	key     TEXT NOT NULL,
	value   BLOB,
	PRIMARY KEY (edge_id, key)
);
CREATE INDEX IF NOT EXISTS edges_src_type ON edges (src, type);
CREATE INDEX IF NOT EXISTS edges_dst_type ON edges (dst, type);
CREATE INDEX IF NOT EXISTS nodes_label ON nodes (label);
`

// execQuerier wraps the standard Exec and Query methods, implemented by
// both *sql.DB and *sql.Tx so the same operations serve direct calls
// and transactions.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn implements store.Conn on top of an execQuerier.
type conn struct {
	execQuerier
}

// Store is the embedded SQLite GraphStore.
type Store struct {
	conn
	db *sql.DB
}

// Open opens (and initializes if needed) the embedded store at path.
// Use ":memory:" for a throwaway in-process database.
func Open(path string) (*Store, error) {
	// The pragma rides in the DSN so every pooled connection enforces
	// foreign keys, not just the first.
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("lite: open %s: %w", path, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		return nil, errors.Join(fmt.Errorf("lite: init schema: %w", err), db.Close())
	}
	return &Store{conn: conn{db}, db: db}, nil
}

// OpenDB wraps an existing database handle. The schema must already be
// initialized; used by tests injecting mock connections.
func OpenDB(db *sql.DB) *Store {
	return &Store{conn: conn{db}, db: db}
}

// Tx implements the store.GraphStore interface.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("lite: begin: %w", err)
	}
	return &liteTx{conn: conn{tx}, tx: tx}, nil
}

// Ping implements the store.GraphStore interface.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements the store.GraphStore interface.
func (s *Store) Close() error {
	return s.db.Close()
}

// liteTx implements store.Tx over *sql.Tx.
type liteTx struct {
	conn
	tx *sql.Tx
}

// Commit implements the store.Tx interface.
func (t *liteTx) Commit() error { return t.tx.Commit() }

// Rollback implements the store.Tx interface.
func (t *liteTx) Rollback() error { return t.tx.Rollback() }

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode(raw []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateNode implements the store.Conn interface.
func (c conn) CreateNode(ctx context.Context, label string, props map[string]any) (store.Node, error) {
	id := store.NodeID(uuid.NewString())
	if _, err := c.ExecContext(ctx, "INSERT INTO nodes (id, label) VALUES (?, ?)", string(id), label); err != nil {
		return store.Node{}, fmt.Errorf("lite: create node: %w", err)
	}
	for k, v := range props {
		raw, err := encode(v)
		if err != nil {
			return store.Node{}, fmt.Errorf("lite: encode property %q: %w", k, err)
		}
		if _, err := c.ExecContext(ctx,
			"INSERT INTO node_props (node_id, key, value) VALUES (?, ?, ?)", string(id), k, raw); err != nil {
			return store.Node{}, fmt.Errorf("lite: create node property %q: %w", k, err)
		}
	}
	cp := make(map[string]any, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return store.Node{ID: id, Label: label, Props: cp}, nil
}

// Node implements the store.Conn interface.
func (c conn) Node(ctx context.Context, id store.NodeID) (store.Node, error) {
	var label string
	err := c.QueryRowContext(ctx, "SELECT label FROM nodes WHERE id = ?", string(id)).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Node{}, grom.NewNotFoundErrorWithID("node", string(id))
	}
	if err != nil {
		return store.Node{}, fmt.Errorf("lite: load node: %w", err)
	}
	props, err := c.propMap(ctx, "SELECT key, value FROM node_props WHERE node_id = ?", string(id))
	if err != nil {
		return store.Node{}, err
	}
	return store.Node{ID: id, Label: label, Props: props}, nil
}

// DeleteNode implements the store.Conn interface. Incident edges and
// properties go with it through the cascading foreign keys.
func (c conn) DeleteNode(ctx context.Context, id store.NodeID) error {
	res, err := c.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("lite: delete node: %w", err)
	}
	return affectedOr(res, grom.NewNotFoundErrorWithID("node", string(id)))
}

// CreateEdge implements the store.Conn interface.
func (c conn) CreateEdge(ctx context.Context, from, to store.NodeID, typ string, props map[string]any) (store.Edge, error) {
	for _, id := range []store.NodeID{from, to} {
		var one int
		err := c.QueryRowContext(ctx, "SELECT 1 FROM nodes WHERE id = ?", string(id)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return store.Edge{}, grom.NewNotFoundErrorWithID("node", string(id))
		}
		if err != nil {
			return store.Edge{}, fmt.Errorf("lite: create edge: %w", err)
		}
	}
	id := store.EdgeID(uuid.NewString())
	if _, err := c.ExecContext(ctx,
		"INSERT INTO edges (id, src, dst, type) VALUES (?, ?, ?, ?)",
		string(id), string(from), string(to), typ); err != nil {
		return store.Edge{}, fmt.Errorf("lite: create edge: %w", err)
	}
	for k, v := range props {
		raw, err := encode(v)
		if err != nil {
			return store.Edge{}, fmt.Errorf("lite: encode property %q: %w", k, err)
		}
		if _, err := c.ExecContext(ctx,
			"INSERT INTO edge_props (edge_id, key, value) VALUES (?, ?, ?)", string(id), k, raw); err != nil {
			return store.Edge{}, fmt.Errorf("lite: create edge property %q: %w", k, err)
		}
	}
	cp := make(map[string]any, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return store.Edge{ID: id, From: from, To: to, Type: typ, Props: cp}, nil
}

// DeleteEdge implements the store.Conn interface.
func (c conn) DeleteEdge(ctx context.Context, id store.EdgeID) error {
	res, err := c.ExecContext(ctx, "DELETE FROM edges WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("lite: delete edge: %w", err)
	}
	return affectedOr(res, grom.NewNotFoundErrorWithID("edge", string(id)))
}

// FindEdges implements the store.Conn interface.
func (c conn) FindEdges(ctx context.Context, id store.NodeID, typ string, dir store.Direction) ([]store.Edge, error) {
	query := "SELECT id, src, dst, type FROM edges WHERE "
	args := []any{}
	switch dir {
	case store.Outgoing:
		query += "src = ?"
		args = append(args, string(id))
	case store.Incoming:
		query += "dst = ?"
		args = append(args, string(id))
	default:
		query += "(src = ? OR dst = ?)"
		args = append(args, string(id), string(id))
	}
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ)
	}
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lite: find edges: %w", err)
	}
	defer rows.Close()
	var edges []store.Edge
	for rows.Next() {
		var eid, src, dst, etyp string
		if err := rows.Scan(&eid, &src, &dst, &etyp); err != nil {
			return nil, fmt.Errorf("lite: find edges: %w", err)
		}
		edges = append(edges, store.Edge{
			ID:   store.EdgeID(eid),
			From: store.NodeID(src),
			To:   store.NodeID(dst),
			Type: etyp,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lite: find edges: %w", err)
	}
	for i := range edges {
		props, err := c.propMap(ctx, "SELECT key, value FROM edge_props WHERE edge_id = ?", string(edges[i].ID))
		if err != nil {
			return nil, err
		}
		edges[i].Props = props
	}
	return edges, nil
}

// NodeProperty implements the store.Conn interface.
func (c conn) NodeProperty(ctx context.Context, id store.NodeID, key string) (any, error) {
	return c.property(ctx, "SELECT value FROM node_props WHERE node_id = ? AND key = ?", string(id), key)
}

// SetNodeProperty implements the store.Conn interface.
func (c conn) SetNodeProperty(ctx context.Context, id store.NodeID, key string, v any) error {
	return c.setProperty(ctx,
		"INSERT INTO node_props (node_id, key, value) VALUES (?, ?, ?) ON CONFLICT (node_id, key) DO UPDATE SET value = excluded.value",
		string(id), key, v)
}

// DeleteNodeProperty implements the store.Conn interface.
func (c conn) DeleteNodeProperty(ctx context.Context, id store.NodeID, key string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM node_props WHERE node_id = ? AND key = ?", string(id), key)
	if err != nil {
		return fmt.Errorf("lite: delete property: %w", err)
	}
	return nil
}

// EdgeProperty implements the store.Conn interface.
func (c conn) EdgeProperty(ctx context.Context, id store.EdgeID, key string) (any, error) {
	return c.property(ctx, "SELECT value FROM edge_props WHERE edge_id = ? AND key = ?", string(id), key)
}

// SetEdgeProperty implements the store.Conn interface.
func (c conn) SetEdgeProperty(ctx context.Context, id store.EdgeID, key string, v any) error {
	return c.setProperty(ctx,
		"INSERT INTO edge_props (edge_id, key, value) VALUES (?, ?, ?) ON CONFLICT (edge_id, key) DO UPDATE SET value = excluded.value",
		string(id), key, v)
}

// DeleteEdgeProperty implements the store.Conn interface.
func (c conn) DeleteEdgeProperty(ctx context.Context, id store.EdgeID, key string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM edge_props WHERE edge_id = ? AND key = ?", string(id), key)
	if err != nil {
		return fmt.Errorf("lite: delete property: %w", err)
	}
	return nil
}

func (c conn) property(ctx context.Context, query, id, key string) (any, error) {
	var raw []byte
	err := c.QueryRowContext(ctx, query, id, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, grom.NewNotFoundError("property " + key)
	}
	if err != nil {
		return nil, fmt.Errorf("lite: load property: %w", err)
	}
	return decode(raw)
}

func (c conn) setProperty(ctx context.Context, query, id, key string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("lite: encode property %q: %w", key, err)
	}
	if _, err := c.ExecContext(ctx, query, id, key, raw); err != nil {
		return fmt.Errorf("lite: set property: %w", err)
	}
	return nil
}

func (c conn) propMap(ctx context.Context, query, id string) (map[string]any, error) {
	rows, err := c.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("lite: load properties: %w", err)
	}
	defer rows.Close()
	props := make(map[string]any)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("lite: load properties: %w", err)
		}
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("lite: decode property %q: %w", key, err)
		}
		props[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lite: load properties: %w", err)
	}
	return props, nil
}

// affectedOr returns notFound when the statement touched no rows.
func affectedOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var (
	_ store.GraphStore = (*Store)(nil)
	_ store.Tx         = (*liteTx)(nil)
)
