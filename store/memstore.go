package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/grom-db/grom"
)

// MemStore is an in-memory GraphStore. It backs the "memory" adapter
// and the test suites; single-process only, safe for concurrent use.
type MemStore struct {
	mu    sync.Mutex
	nodes map[NodeID]*memNode
	edges map[EdgeID]*memEdge
}

type memNode struct {
	label string
	props map[string]any
}

type memEdge struct {
	from, to NodeID
	typ      string
	props    map[string]any
}

// NewMemStore returns an empty in-memory graph store.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[NodeID]*memNode),
		edges: make(map[EdgeID]*memEdge),
	}
}

func copyProps(props map[string]any) map[string]any {
	cp := make(map[string]any, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return cp
}

// CreateNode implements the Conn interface.
func (s *MemStore) CreateNode(ctx context.Context, label string, props map[string]any) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNode(label, props)
}

func (s *MemStore) createNode(label string, props map[string]any) (Node, error) {
	id := NodeID(uuid.NewString())
	s.nodes[id] = &memNode{label: label, props: copyProps(props)}
	return Node{ID: id, Label: label, Props: copyProps(props)}, nil
}

// Node implements the Conn interface.
func (s *MemStore) Node(ctx context.Context, id NodeID) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node(id)
}

func (s *MemStore) node(id NodeID) (Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, grom.NewNotFoundErrorWithID("node", string(id))
	}
	return Node{ID: id, Label: n.label, Props: copyProps(n.props)}, nil
}

// DeleteNode implements the Conn interface.
func (s *MemStore) DeleteNode(ctx context.Context, id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.deleteNode(id)
	return err
}

// deleteNode removes the node and its incident edges, returning the
// removed edges so transactions can undo the cascade.
func (s *MemStore) deleteNode(id NodeID) (map[EdgeID]*memEdge, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, grom.NewNotFoundErrorWithID("node", string(id))
	}
	removed := make(map[EdgeID]*memEdge)
	for eid, e := range s.edges {
		if e.from == id || e.to == id {
			removed[eid] = e
			delete(s.edges, eid)
		}
	}
	delete(s.nodes, id)
	return removed, nil
}

// CreateEdge implements the Conn interface.
func (s *MemStore) CreateEdge(ctx context.Context, from, to NodeID, typ string, props map[string]any) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEdge(from, to, typ, props)
}

func (s *MemStore) createEdge(from, to NodeID, typ string, props map[string]any) (Edge, error) {
	if _, ok := s.nodes[from]; !ok {
		return Edge{}, grom.NewNotFoundErrorWithID("node", string(from))
	}
	if _, ok := s.nodes[to]; !ok {
		return Edge{}, grom.NewNotFoundErrorWithID("node", string(to))
	}
	id := EdgeID(uuid.NewString())
	s.edges[id] = &memEdge{from: from, to: to, typ: typ, props: copyProps(props)}
	return Edge{ID: id, From: from, To: to, Type: typ, Props: copyProps(props)}, nil
}

// DeleteEdge implements the Conn interface.
func (s *MemStore) DeleteEdge(ctx context.Context, id EdgeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.deleteEdge(id)
	return err
}

func (s *MemStore) deleteEdge(id EdgeID) (*memEdge, error) {
	e, ok := s.edges[id]
	if !ok {
		return nil, grom.NewNotFoundErrorWithID("edge", string(id))
	}
	delete(s.edges, id)
	return e, nil
}

// FindEdges implements the Conn interface.
func (s *MemStore) FindEdges(ctx context.Context, id NodeID, typ string, dir Direction) ([]Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findEdges(id, typ, dir), nil
}

func (s *MemStore) findEdges(id NodeID, typ string, dir Direction) []Edge {
	var out []Edge
	for eid, e := range s.edges {
		if typ != "" && e.typ != typ {
			continue
		}
		match := false
		switch dir {
		case Outgoing:
			match = e.from == id
		case Incoming:
			match = e.to == id
		case Both:
			match = e.from == id || e.to == id
		}
		if match {
			out = append(out, Edge{ID: eid, From: e.from, To: e.to, Type: e.typ, Props: copyProps(e.props)})
		}
	}
	return out
}

// NodeProperty implements the Conn interface.
func (s *MemStore) NodeProperty(ctx context.Context, id NodeID, key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, grom.NewNotFoundErrorWithID("node", string(id))
	}
	v, ok := n.props[key]
	if !ok {
		return nil, grom.NewNotFoundError("node property " + key)
	}
	return v, nil
}

// SetNodeProperty implements the Conn interface.
func (s *MemStore) SetNodeProperty(ctx context.Context, id NodeID, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, err := s.setNodeProperty(id, key, v)
	return err
}

func (s *MemStore) setNodeProperty(id NodeID, key string, v any) (prev any, had bool, err error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, false, grom.NewNotFoundErrorWithID("node", string(id))
	}
	prev, had = n.props[key]
	n.props[key] = v
	return prev, had, nil
}

// DeleteNodeProperty implements the Conn interface.
func (s *MemStore) DeleteNodeProperty(ctx context.Context, id NodeID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("node", string(id))
	}
	delete(n.props, key)
	return nil
}

// EdgeProperty implements the Conn interface.
func (s *MemStore) EdgeProperty(ctx context.Context, id EdgeID, key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[id]
	if !ok {
		return nil, grom.NewNotFoundErrorWithID("edge", string(id))
	}
	v, ok := e.props[key]
	if !ok {
		return nil, grom.NewNotFoundError("edge property " + key)
	}
	return v, nil
}

// SetEdgeProperty implements the Conn interface.
func (s *MemStore) SetEdgeProperty(ctx context.Context, id EdgeID, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("edge", string(id))
	}
	e.props[key] = v
	return nil
}

// DeleteEdgeProperty implements the Conn interface.
func (s *MemStore) DeleteEdgeProperty(ctx context.Context, id EdgeID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("edge", string(id))
	}
	delete(e.props, key)
	return nil
}

// Tx implements the GraphStore interface. The transaction holds the
// store lock for its lifetime; operations are applied immediately and
// journaled so Rollback can undo them in reverse.
func (s *MemStore) Tx(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	return &memTx{s: s}, nil
}

// Ping implements the GraphStore interface.
func (s *MemStore) Ping(ctx context.Context) error { return nil }

// Close implements the GraphStore interface.
func (s *MemStore) Close() error { return nil }

type memTx struct {
	s    *MemStore
	undo []func()
	done bool
	mu   sync.Mutex
}

func (t *memTx) finish() error {
	if t.done {
		return grom.ErrTxStarted
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

// Commit implements the Tx interface.
func (t *memTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = nil
	return t.finish()
}

// Rollback implements the Tx interface.
func (t *memTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return t.finish()
}

func (t *memTx) CreateNode(ctx context.Context, label string, props map[string]any) (Node, error) {
	n, err := t.s.createNode(label, props)
	if err == nil {
		t.undo = append(t.undo, func() { delete(t.s.nodes, n.ID) })
	}
	return n, err
}

func (t *memTx) Node(ctx context.Context, id NodeID) (Node, error) {
	return t.s.node(id)
}

func (t *memTx) DeleteNode(ctx context.Context, id NodeID) error {
	n := t.s.nodes[id]
	removed, err := t.s.deleteNode(id)
	if err == nil {
		t.undo = append(t.undo, func() {
			t.s.nodes[id] = n
			for eid, e := range removed {
				t.s.edges[eid] = e
			}
		})
	}
	return err
}

func (t *memTx) CreateEdge(ctx context.Context, from, to NodeID, typ string, props map[string]any) (Edge, error) {
	e, err := t.s.createEdge(from, to, typ, props)
	if err == nil {
		t.undo = append(t.undo, func() { delete(t.s.edges, e.ID) })
	}
	return e, err
}

func (t *memTx) DeleteEdge(ctx context.Context, id EdgeID) error {
	e, err := t.s.deleteEdge(id)
	if err == nil {
		t.undo = append(t.undo, func() { t.s.edges[id] = e })
	}
	return err
}

func (t *memTx) FindEdges(ctx context.Context, id NodeID, typ string, dir Direction) ([]Edge, error) {
	return t.s.findEdges(id, typ, dir), nil
}

func (t *memTx) NodeProperty(ctx context.Context, id NodeID, key string) (any, error) {
	n, ok := t.s.nodes[id]
	if !ok {
		return nil, grom.NewNotFoundErrorWithID("node", string(id))
	}
	v, ok := n.props[key]
	if !ok {
		return nil, grom.NewNotFoundError("node property " + key)
	}
	return v, nil
}

func (t *memTx) SetNodeProperty(ctx context.Context, id NodeID, key string, v any) error {
	prev, had, err := t.s.setNodeProperty(id, key, v)
	if err == nil {
		t.undo = append(t.undo, func() {
			n, ok := t.s.nodes[id]
			if !ok {
				return
			}
			if had {
				n.props[key] = prev
			} else {
				delete(n.props, key)
			}
		})
	}
	return err
}

func (t *memTx) DeleteNodeProperty(ctx context.Context, id NodeID, key string) error {
	n, ok := t.s.nodes[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("node", string(id))
	}
	prev, had := n.props[key]
	delete(n.props, key)
	if had {
		t.undo = append(t.undo, func() { n.props[key] = prev })
	}
	return nil
}

func (t *memTx) EdgeProperty(ctx context.Context, id EdgeID, key string) (any, error) {
	e, ok := t.s.edges[id]
	if !ok {
		return nil, grom.NewNotFoundErrorWithID("edge", string(id))
	}
	v, ok := e.props[key]
	if !ok {
		return nil, grom.NewNotFoundError("edge property " + key)
	}
	return v, nil
}

func (t *memTx) SetEdgeProperty(ctx context.Context, id EdgeID, key string, v any) error {
	e, ok := t.s.edges[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("edge", string(id))
	}
	prev, had := e.props[key]
	e.props[key] = v
	t.undo = append(t.undo, func() {
		if had {
			e.props[key] = prev
		} else {
			delete(e.props, key)
		}
	})
	return nil
}

func (t *memTx) DeleteEdgeProperty(ctx context.Context, id EdgeID, key string) error {
	e, ok := t.s.edges[id]
	if !ok {
		return grom.NewNotFoundErrorWithID("edge", string(id))
	}
	prev, had := e.props[key]
	delete(e.props, key)
	if had {
		t.undo = append(t.undo, func() { e.props[key] = prev })
	}
	return nil
}

var (
	_ GraphStore = (*MemStore)(nil)
	_ Tx         = (*memTx)(nil)
)
