package store

import (
	"context"
)

// NodeID identifies a node in the graph store.
type NodeID string

// EdgeID identifies an edge in the graph store.
type EdgeID string

// Node is a labeled entity with a property map.
type Node struct {
	ID    NodeID
	Label string
	Props map[string]any
}

// Edge is a directed, typed connection between two nodes with its own
// property map.
type Edge struct {
	ID    EdgeID
	From  NodeID
	To    NodeID
	Type  string
	Props map[string]any
}

// Other returns the node on the far side of the edge relative to id.
func (e Edge) Other(id NodeID) NodeID {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Direction of an edge traversal relative to a node.
type Direction int

// Traversal directions.
const (
	Outgoing Direction = iota
	Incoming
	Both
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	}
	return "unknown"
}

// Reverse returns the opposite direction. Both reverses to itself.
func (d Direction) Reverse() Direction {
	switch d {
	case Outgoing:
		return Incoming
	case Incoming:
		return Outgoing
	}
	return Both
}

// Conn is the set of read/write operations every graph store adapter
// provides, both directly and inside a transaction.
type Conn interface {
	// CreateNode creates a node with the given label and properties.
	CreateNode(ctx context.Context, label string, props map[string]any) (Node, error)

	// Node returns the node with the given ID, including its properties.
	Node(ctx context.Context, id NodeID) (Node, error)

	// DeleteNode removes a node and all its incident edges.
	DeleteNode(ctx context.Context, id NodeID) error

	// CreateEdge creates a typed edge from one node to another.
	CreateEdge(ctx context.Context, from, to NodeID, typ string, props map[string]any) (Edge, error)

	// DeleteEdge removes an edge.
	DeleteEdge(ctx context.Context, id EdgeID) error

	// FindEdges returns the edges of the given type incident to the node
	// in the given direction. An empty type matches all edge types.
	FindEdges(ctx context.Context, id NodeID, typ string, dir Direction) ([]Edge, error)

	// NodeProperty returns a single node property. Implementations
	// return a grom.NotFoundError when the key is absent.
	NodeProperty(ctx context.Context, id NodeID, key string) (any, error)

	// SetNodeProperty sets a single node property.
	SetNodeProperty(ctx context.Context, id NodeID, key string, v any) error

	// DeleteNodeProperty removes a single node property.
	DeleteNodeProperty(ctx context.Context, id NodeID, key string) error

	// EdgeProperty returns a single edge property.
	EdgeProperty(ctx context.Context, id EdgeID, key string) (any, error)

	// SetEdgeProperty sets a single edge property.
	SetEdgeProperty(ctx context.Context, id EdgeID, key string, v any) error

	// DeleteEdgeProperty removes a single edge property.
	DeleteEdgeProperty(ctx context.Context, id EdgeID, key string) error
}

// GraphStore is the capability the resolver consumes. Transactional
// atomicity (the delete-then-create replacement of a singular relation
// runs as one unit) is the store's responsibility, through Tx.
type GraphStore interface {
	Conn

	// Tx starts a transaction. All Conn operations issued through the
	// returned Tx take effect on Commit and are undone on Rollback.
	Tx(ctx context.Context) (Tx, error)

	// Ping checks store connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying store resources.
	Close() error
}

// Tx is a transactional view of a graph store.
type Tx interface {
	Conn

	// Commit applies the transaction.
	Commit() error

	// Rollback discards the transaction.
	Rollback() error
}
