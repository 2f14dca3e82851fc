package store

import (
	"context"
	"strings"
)

// Prefixed wraps a store so that the configured label prefix is applied
// uniformly to every label and edge-type string before any store call,
// and stripped again from everything read back. A nil or empty prefix
// returns the store unchanged.
func Prefixed(s GraphStore, prefix string) GraphStore {
	if prefix == "" {
		return s
	}
	return &prefixed{GraphStore: s, prefix: prefix}
}

type prefixed struct {
	GraphStore
	prefix string
}

func (p *prefixed) add(s string) string {
	if s == "" {
		return s
	}
	return p.prefix + s
}

func (p *prefixed) strip(s string) string {
	return strings.TrimPrefix(s, p.prefix)
}

func (p *prefixed) stripNode(n Node) Node {
	n.Label = p.strip(n.Label)
	return n
}

func (p *prefixed) stripEdge(e Edge) Edge {
	e.Type = p.strip(e.Type)
	return e
}

func (p *prefixed) CreateNode(ctx context.Context, label string, props map[string]any) (Node, error) {
	n, err := p.GraphStore.CreateNode(ctx, p.add(label), props)
	return p.stripNode(n), err
}

func (p *prefixed) Node(ctx context.Context, id NodeID) (Node, error) {
	n, err := p.GraphStore.Node(ctx, id)
	return p.stripNode(n), err
}

func (p *prefixed) CreateEdge(ctx context.Context, from, to NodeID, typ string, props map[string]any) (Edge, error) {
	e, err := p.GraphStore.CreateEdge(ctx, from, to, p.add(typ), props)
	return p.stripEdge(e), err
}

func (p *prefixed) FindEdges(ctx context.Context, id NodeID, typ string, dir Direction) ([]Edge, error) {
	edges, err := p.GraphStore.FindEdges(ctx, id, p.add(typ), dir)
	for i := range edges {
		edges[i] = p.stripEdge(edges[i])
	}
	return edges, err
}

func (p *prefixed) Tx(ctx context.Context) (Tx, error) {
	tx, err := p.GraphStore.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &prefixedTx{Tx: tx, p: p}, nil
}

type prefixedTx struct {
	Tx
	p *prefixed
}

func (t *prefixedTx) CreateNode(ctx context.Context, label string, props map[string]any) (Node, error) {
	n, err := t.Tx.CreateNode(ctx, t.p.add(label), props)
	return t.p.stripNode(n), err
}

func (t *prefixedTx) Node(ctx context.Context, id NodeID) (Node, error) {
	n, err := t.Tx.Node(ctx, id)
	return t.p.stripNode(n), err
}

func (t *prefixedTx) CreateEdge(ctx context.Context, from, to NodeID, typ string, props map[string]any) (Edge, error) {
	e, err := t.Tx.CreateEdge(ctx, from, to, t.p.add(typ), props)
	return t.p.stripEdge(e), err
}

func (t *prefixedTx) FindEdges(ctx context.Context, id NodeID, typ string, dir Direction) ([]Edge, error) {
	edges, err := t.Tx.FindEdges(ctx, id, t.p.add(typ), dir)
	for i := range edges {
		edges[i] = t.p.stripEdge(edges[i])
	}
	return edges, err
}
