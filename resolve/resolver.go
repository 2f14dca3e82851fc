// Package resolve implements the relationship resolver: the component
// that decides, for an accessor invocation on a node, which edge type,
// direction and cardinality apply, and issues the corresponding reads
// and writes against the graph store.
//
// Resolution is two-staged. A relation declared on the owning entity
// always wins. Otherwise the accessor name is classified by convention:
// a trailing _of or _to marks an outgoing edge, _from an incoming one,
// and the remaining token is matched against the registered labels: an
// exact singular match means one-cardinality, an exact plural match
// means many. Anything ambiguous or unmatched surfaces as an
// InvalidSchemaError; inference never guesses silently.
package resolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/registry"
	"github.com/grom-db/grom/schema/rel"
	"github.com/grom-db/grom/store"
)

// ResolvedRelation is the outcome of resolving an accessor name: the
// concrete edge type, direction and cardinality to apply, plus the
// declaration metadata when the relation was declared.
type ResolvedRelation struct {
	Owner     string          // Owning entity label.
	Name      string          // Accessor name that resolved.
	EdgeType  string          // Edge type emitted to the store.
	Direction store.Direction // Outgoing or Incoming.
	Unique    bool            // Singular cardinality.
	Target    string          // Target entity label.
	PropKeys  []string        // Declared edge property keys, nil when inferred.
	CacheTTL  time.Duration   // Declared cache TTL, zero when inferred.
	Declared  bool            // True when backed by a declaration.
}

// Resolver binds a frozen registry to a graph store and resolves
// accessor invocations into store operations. Operations are
// synchronous and single-caller; atomicity of multi-step writes is
// delegated to the store's transactions.
type Resolver struct {
	reg      *registry.Registry
	store    store.GraphStore
	cache    grom.Cache
	defaults DefaultsFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache installs a cache for relations declared with a cache TTL.
// Inferred relations bypass it unconditionally.
func WithCache(c grom.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithDefaults installs the policy filling omitted declared edge
// properties on assignment. The default policy is RejectMissing.
func WithDefaults(fn DefaultsFunc) Option {
	return func(r *Resolver) { r.defaults = fn }
}

// New returns a resolver over the given registry and store. The
// registry is frozen; declarations are immutable from here on.
func New(reg *registry.Registry, s store.GraphStore, opts ...Option) *Resolver {
	r := &Resolver{reg: reg, store: s, defaults: RejectMissing}
	for _, opt := range opts {
		opt(r)
	}
	reg.Freeze()
	return r
}

// Store returns the underlying graph store.
func (r *Resolver) Store() store.GraphStore { return r.store }

// Directional accessor suffixes recognized by convention inference.
const (
	suffixOf   = "_of"
	suffixTo   = "_to"
	suffixFrom = "_from"
)

// Resolve maps an accessor invocation on an entity to a concrete
// relation. Declared relations are looked up first, by accessor name or
// edge type; only then does convention inference run.
func (r *Resolver) Resolve(owner, accessor string) (*ResolvedRelation, error) {
	ent, ok := r.reg.Entity(owner)
	if !ok {
		return nil, grom.NewInvalidSchemaError(accessor, fmt.Sprintf("entity %q is not registered", owner))
	}
	if d, ok := ent.Relation(accessor); ok {
		return declared(owner, d), nil
	}
	return r.infer(owner, accessor)
}

// declared converts a relation declaration into a resolved relation.
func declared(owner string, d *rel.Descriptor) *ResolvedRelation {
	dir := store.Outgoing
	if d.Direction == rel.In {
		dir = store.Incoming
	}
	return &ResolvedRelation{
		Owner:     owner,
		Name:      d.Name,
		EdgeType:  d.EdgeType,
		Direction: dir,
		Unique:    d.Unique,
		Target:    d.Target,
		PropKeys:  d.PropKeys,
		CacheTTL:  d.CacheTTL,
		Declared:  true,
	}
}

// infer classifies an accessor name by naming convention alone.
func (r *Resolver) infer(owner, accessor string) (*ResolvedRelation, error) {
	token, dir, err := splitDirection(accessor)
	if err != nil {
		return nil, err
	}
	ent, plural, err := r.reg.MatchLabel(token)
	if err != nil {
		return nil, grom.NewInvalidSchemaError(accessor, err.Error())
	}
	return &ResolvedRelation{
		Owner:     owner,
		Name:      accessor,
		EdgeType:  rel.DeriveEdgeType(r.reg.Singularize(token)),
		Direction: dir,
		Unique:    !plural,
		Target:    ent.Label,
	}, nil
}

// splitDirection strips a single directional suffix from the accessor.
// A bare name defaults to outgoing. A second directional suffix under
// the first is a conflicting cue and fails.
func splitDirection(accessor string) (token string, dir store.Direction, err error) {
	token, dir = accessor, store.Outgoing
	switch {
	case strings.HasSuffix(accessor, suffixFrom):
		token, dir = strings.TrimSuffix(accessor, suffixFrom), store.Incoming
	case strings.HasSuffix(accessor, suffixOf):
		token = strings.TrimSuffix(accessor, suffixOf)
	case strings.HasSuffix(accessor, suffixTo):
		token = strings.TrimSuffix(accessor, suffixTo)
	}
	if token == "" {
		return "", 0, grom.NewInvalidSchemaError(accessor, "no target token left after direction suffix")
	}
	for _, s := range []string{suffixOf, suffixTo, suffixFrom} {
		if strings.HasSuffix(token, s) {
			return "", 0, grom.NewInvalidSchemaError(accessor,
				fmt.Sprintf("conflicting direction cues: %q and %q", s, accessor[len(token):]))
		}
	}
	return token, dir, nil
}
