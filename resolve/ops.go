package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/store"
)

// CreateNode creates a node for a registered entity. Declared
// properties are validated and defaulted; undeclared keys pass through
// untouched (they become runtime properties, resolved per access).
func (r *Resolver) CreateNode(ctx context.Context, label string, props map[string]any) (store.Node, error) {
	ent, ok := r.reg.Entity(label)
	if !ok {
		return store.Node{}, grom.NewInvalidSchemaError(label, "entity is not registered")
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if d, ok := ent.Property(k); ok {
			if err := d.Validate(v); err != nil {
				return store.Node{}, grom.NewValidationError(k, err)
			}
			out[d.Key()] = v
			continue
		}
		out[k] = v
	}
	for _, d := range ent.Properties() {
		if _, ok := out[d.Key()]; ok {
			continue
		}
		if v, ok := d.DefaultValue(); ok {
			out[d.Key()] = v
		} else if !d.Optional {
			return store.Node{}, grom.NewValidationError(d.Name, errors.New("missing non-optional property"))
		}
	}
	n, err := r.store.CreateNode(ctx, label, out)
	if err != nil {
		return store.Node{}, grom.NewMutationError(label, "create", err)
	}
	return n, nil
}

// AssignSingular assigns the target of a one-cardinality relation:
// any existing edge of that type and direction is deleted and the
// replacement created, as one store transaction.
func (r *Resolver) AssignSingular(ctx context.Context, node store.Node, accessor string, target store.Node, props map[string]any) error {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return err
	}
	if !rr.Unique {
		return grom.NewMutationError(node.Label, "assign",
			fmt.Errorf("relation %s has many-cardinality, use AssignPlural", rr.Name))
	}
	filled, err := r.fillProps(rr, props)
	if err != nil {
		return err
	}
	tx, err := r.store.Tx(ctx)
	if err != nil {
		return grom.NewMutationError(node.Label, "assign", err)
	}
	existing, err := tx.FindEdges(ctx, node.ID, rr.EdgeType, rr.Direction)
	if err != nil {
		return rollback(tx, grom.NewMutationError(node.Label, "assign", err))
	}
	for _, e := range existing {
		if err := tx.DeleteEdge(ctx, e.ID); err != nil {
			return rollback(tx, grom.NewMutationError(node.Label, "assign", err))
		}
	}
	from, to := orient(node.ID, target.ID, rr.Direction)
	if _, err := tx.CreateEdge(ctx, from, to, rr.EdgeType, filled); err != nil {
		return rollback(tx, grom.NewMutationError(node.Label, "assign", err))
	}
	if err := tx.Commit(); err != nil {
		return grom.NewMutationError(node.Label, "assign", err)
	}
	r.invalidate(ctx, node.ID, target.ID)
	return nil
}

// AssignPlural appends one edge per target to a many-cardinality
// relation; existing edges are untouched.
func (r *Resolver) AssignPlural(ctx context.Context, node store.Node, accessor string, targets ...store.Node) error {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return err
	}
	if rr.Unique {
		return grom.NewMutationError(node.Label, "assign",
			fmt.Errorf("relation %s is singular, use AssignSingular", rr.Name))
	}
	filled, err := r.fillProps(rr, nil)
	if err != nil {
		return err
	}
	tx, err := r.store.Tx(ctx)
	if err != nil {
		return grom.NewMutationError(node.Label, "assign", err)
	}
	ids := []store.NodeID{node.ID}
	for _, target := range targets {
		from, to := orient(node.ID, target.ID, rr.Direction)
		if _, err := tx.CreateEdge(ctx, from, to, rr.EdgeType, filled); err != nil {
			return rollback(tx, grom.NewMutationError(node.Label, "assign", err))
		}
		ids = append(ids, target.ID)
	}
	if err := tx.Commit(); err != nil {
		return grom.NewMutationError(node.Label, "assign", err)
	}
	r.invalidate(ctx, ids...)
	return nil
}

// Clear removes every edge of the relation from the node.
func (r *Resolver) Clear(ctx context.Context, node store.Node, accessor string) error {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return err
	}
	tx, err := r.store.Tx(ctx)
	if err != nil {
		return grom.NewMutationError(node.Label, "clear", err)
	}
	edges, err := tx.FindEdges(ctx, node.ID, rr.EdgeType, rr.Direction)
	if err != nil {
		return rollback(tx, grom.NewMutationError(node.Label, "clear", err))
	}
	ids := []store.NodeID{node.ID}
	for _, e := range edges {
		if err := tx.DeleteEdge(ctx, e.ID); err != nil {
			return rollback(tx, grom.NewMutationError(node.Label, "clear", err))
		}
		ids = append(ids, e.Other(node.ID))
	}
	if err := tx.Commit(); err != nil {
		return grom.NewMutationError(node.Label, "clear", err)
	}
	r.invalidate(ctx, ids...)
	return nil
}

// Query returns the node connected through a singular relation, lenient
// about multiplicity: zero or more than one edge yields nil, nil. Use
// QueryStrict to surface ambiguous multiplicity as an error.
func (r *Resolver) Query(ctx context.Context, node store.Node, accessor string) (*store.Node, error) {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return nil, err
	}
	nodes, err := r.connected(ctx, rr, node)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, nil
	}
	return &nodes[0], nil
}

// QueryStrict returns the node connected through a singular relation,
// failing with a NotFoundError on zero edges and a NotSingularError on
// more than one.
func (r *Resolver) QueryStrict(ctx context.Context, node store.Node, accessor string) (store.Node, error) {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return store.Node{}, err
	}
	nodes, err := r.connected(ctx, rr, node)
	if err != nil {
		return store.Node{}, err
	}
	switch len(nodes) {
	case 0:
		return store.Node{}, grom.NewNotFoundError(rr.Target)
	case 1:
		return nodes[0], nil
	}
	return store.Node{}, grom.NewNotSingularErrorWithCount(rr.Name, len(nodes))
}

// QueryAll returns every node connected through the relation.
func (r *Resolver) QueryAll(ctx context.Context, node store.Node, accessor string) ([]store.Node, error) {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return nil, err
	}
	return r.connected(ctx, rr, node)
}

// Exists reports whether any edge of the relation exists on the node.
func (r *Resolver) Exists(ctx context.Context, node store.Node, accessor string) (bool, error) {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return false, err
	}
	edges, err := r.store.FindEdges(ctx, node.ID, rr.EdgeType, rr.Direction)
	if err != nil {
		return false, grom.NewQueryError(node.Label, "exists", err)
	}
	return len(edges) > 0, nil
}

// ExistsTo reports whether an edge of the relation exists specifically
// to the given target.
func (r *Resolver) ExistsTo(ctx context.Context, node store.Node, accessor string, target store.Node) (bool, error) {
	rr, err := r.Resolve(node.Label, accessor)
	if err != nil {
		return false, err
	}
	edges, err := r.store.FindEdges(ctx, node.ID, rr.EdgeType, rr.Direction)
	if err != nil {
		return false, grom.NewQueryError(node.Label, "exists", err)
	}
	for _, e := range edges {
		if e.Other(node.ID) == target.ID {
			return true, nil
		}
	}
	return false, nil
}

// Property reads a node property. Declared properties are served from
// the materialized node when present; undeclared properties always cost
// one store round-trip and are never cached, which keeps the price of
// undisciplined schema growth visible.
func (r *Resolver) Property(ctx context.Context, node store.Node, key string) (any, error) {
	if ent, ok := r.reg.Entity(node.Label); ok {
		if d, ok := ent.Property(key); ok {
			if v, ok := node.Props[d.Key()]; ok {
				return v, nil
			}
			key = d.Key()
		}
	}
	v, err := r.store.NodeProperty(ctx, node.ID, key)
	if err != nil {
		return nil, grom.NewQueryError(node.Label, "property", err)
	}
	return v, nil
}

// SetProperty writes a node property, validating it when declared.
func (r *Resolver) SetProperty(ctx context.Context, node store.Node, key string, v any) error {
	if ent, ok := r.reg.Entity(node.Label); ok {
		if d, ok := ent.Property(key); ok {
			if d.Immutable {
				if _, has := node.Props[d.Key()]; has {
					return grom.NewValidationError(key, errors.New("property is immutable"))
				}
			}
			if err := d.Validate(v); err != nil {
				return grom.NewValidationError(key, err)
			}
			key = d.Key()
		}
	}
	if err := r.store.SetNodeProperty(ctx, node.ID, key, v); err != nil {
		return grom.NewMutationError(node.Label, "property", err)
	}
	return nil
}

// DeleteProperty removes a node property.
func (r *Resolver) DeleteProperty(ctx context.Context, node store.Node, key string) error {
	if err := r.store.DeleteNodeProperty(ctx, node.ID, key); err != nil {
		return grom.NewMutationError(node.Label, "property", err)
	}
	return nil
}

// fillProps completes an assignment's edge properties against the
// relation's declared keys, consulting the defaults policy for omitted
// ones. Leftover missing keys fail with a MissingPropertiesError.
func (r *Resolver) fillProps(rr *ResolvedRelation, props map[string]any) (map[string]any, error) {
	filled := make(map[string]any, len(props))
	for k, v := range props {
		filled[k] = v
	}
	var missing []string
	for _, key := range rr.PropKeys {
		if _, ok := filled[key]; ok {
			continue
		}
		if v, ok := r.defaults(rr.Name, key); ok {
			filled[key] = v
			continue
		}
		missing = append(missing, key)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, grom.NewMissingPropertiesError(rr.Name, missing)
	}
	return filled, nil
}

// connected returns the nodes on the far side of the relation's edges,
// consulting the cache for relations that declared a cache TTL.
func (r *Resolver) connected(ctx context.Context, rr *ResolvedRelation, node store.Node) ([]store.Node, error) {
	key := grom.CacheKey{
		NodeID:    string(node.ID),
		EdgeType:  rr.EdgeType,
		Direction: rr.Direction.String(),
		Operation: "nodes",
	}
	cacheable := rr.Declared && rr.CacheTTL > 0 && r.cache != nil
	if cacheable {
		if raw, err := r.cache.Get(ctx, key.String()); err == nil && raw != nil {
			var nodes []store.Node
			if err := msgpack.Unmarshal(raw, &nodes); err == nil {
				return nodes, nil
			}
		}
	}
	edges, err := r.store.FindEdges(ctx, node.ID, rr.EdgeType, rr.Direction)
	if err != nil {
		return nil, grom.NewQueryError(node.Label, "query", err)
	}
	nodes := make([]store.Node, 0, len(edges))
	for _, e := range edges {
		n, err := r.store.Node(ctx, e.Other(node.ID))
		if err != nil {
			return nil, grom.NewQueryError(node.Label, "query", err)
		}
		nodes = append(nodes, n)
	}
	if cacheable {
		if raw, err := msgpack.Marshal(nodes); err == nil {
			_ = r.cache.Set(ctx, key.String(), raw, rr.CacheTTL)
		}
	}
	return nodes, nil
}

// invalidate drops every cached query for the given nodes.
func (r *Resolver) invalidate(ctx context.Context, ids ...store.NodeID) {
	if r.cache == nil {
		return
	}
	for _, id := range ids {
		_ = r.cache.DeletePrefix(ctx, grom.CacheKey{NodeID: string(id)}.Prefix())
	}
}

// orient places node and target on the correct ends of the edge.
func orient(node, target store.NodeID, dir store.Direction) (from, to store.NodeID) {
	if dir == store.Incoming {
		return target, node
	}
	return node, target
}

// rollback aborts the transaction, preserving the original error. A
// failing rollback is reported through a RollbackError wrapping both.
func rollback(tx store.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return &grom.RollbackError{Err: errors.Join(err, rerr)}
	}
	return err
}
