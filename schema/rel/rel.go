package rel

import (
	"reflect"
	"strings"
	"time"
)

// Direction hints carried by a relation declaration. The resolver maps
// them onto store directions; Out is the default for rel.To and In for
// rel.From.
const (
	Out = "outgoing"
	In  = "incoming"
)

// A Descriptor for relation configuration. Built once at entity
// registration time and immutable afterwards.
type Descriptor struct {
	Name      string        // Relation (accessor) name.
	Target    string        // Target entity type name.
	EdgeType  string        // Edge type emitted to the store; derived from Name when empty.
	Direction string        // Out or In.
	Unique    bool          // Singular cardinality (has-one).
	Required  bool          // Relation must be assigned before save.
	Immutable bool          // Relation cannot be reassigned.
	PropKeys  []string      // Edge property keys expected on assignment.
	CacheTTL  time.Duration // Result caching TTL; zero disables caching.
	Comment   string        // Optional comment.
}

// To returns a new outgoing relation builder: the declaring entity is
// the edge source. The target is given as a schema value, e.g.:
//
//	rel.To("country", Country{}).Type("NATIONAL").Unique()
func To(name string, target any) *Builder {
	return &Builder{desc: &Descriptor{
		Name:      name,
		Target:    typeName(target),
		Direction: Out,
	}}
}

// From returns a new incoming relation builder: the declaring entity is
// the edge destination.
//
//	rel.From("employer", Company{}).Type("EMPLOYS").Unique()
func From(name string, target any) *Builder {
	return &Builder{desc: &Descriptor{
		Name:      name,
		Target:    typeName(target),
		Direction: In,
	}}
}

// Builder is the builder for relation declarations.
type Builder struct {
	desc *Descriptor
}

// Type sets an explicit edge-type name for the relation. When omitted,
// the edge type is derived from the relation name (upper snake-case,
// singularized) at registration time.
func (b *Builder) Type(name string) *Builder {
	b.desc.EdgeType = name
	return b
}

// Unique marks the relation as singular: at most one edge of this type
// and direction may exist per node, and assignment replaces any
// existing edge atomically.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Required marks the relation as required on entity creation.
func (b *Builder) Required() *Builder {
	b.desc.Required = true
	return b
}

// Immutable marks the relation as immutable after first assignment.
func (b *Builder) Immutable() *Builder {
	b.desc.Immutable = true
	return b
}

// Properties declares the edge property keys expected on assignment.
// Assignments omitting any of them go through the resolver's defaults
// policy or fail.
func (b *Builder) Properties(keys ...string) *Builder {
	b.desc.PropKeys = append(b.desc.PropKeys, keys...)
	return b
}

// Cache enables result caching for queries through this relation.
// Inferred (undeclared) relations can never opt in.
func (b *Builder) Cache(ttl time.Duration) *Builder {
	b.desc.CacheTTL = ttl
	return b
}

// Comment sets a comment on the relation.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the grom.Relation interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// typeName extracts the entity type name from a schema value.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// DeriveEdgeType returns the default edge-type name for a relation
// token: upper snake-case. The registry singularizes the relation name
// before deriving, so "friends" yields FRIEND; an explicit Type call
// overrides the derivation entirely.
func DeriveEdgeType(token string) string {
	return strings.ToUpper(strings.ReplaceAll(token, " ", "_"))
}
