// Package registry collects entity declarations into the lookup tables
// the relationship resolver works from: labels by singular and plural
// token, declared relations by name and edge type, declared properties
// by name.
//
// Registration happens once, at type-registration time; the registry is
// frozen before the first resolver use and immutable afterwards.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/schema/prop"
	"github.com/grom-db/grom/schema/rel"
)

// Lookup errors returned by MatchLabel.
var (
	// ErrUnknownToken is returned when a token matches neither a
	// registered singular label nor the plural form of one.
	ErrUnknownToken = errors.New("registry: token matches no registered label")

	// ErrAmbiguousToken is returned when a token matches a singular
	// label of one entity and the plural form of another at the same
	// time, so cardinality cannot be decided.
	ErrAmbiguousToken = errors.New("registry: token matches multiple labels")
)

// Entity is the registered, immutable view of a schema declaration.
type Entity struct {
	// Label is the node label, taken verbatim from the entity type
	// name: singular, case preserved.
	Label string

	properties map[string]*prop.Descriptor
	relations  map[string]*rel.Descriptor
	byEdgeType map[string]*rel.Descriptor
}

// Property returns the declared property descriptor by name.
func (e *Entity) Property(name string) (*prop.Descriptor, bool) {
	d, ok := e.properties[name]
	return d, ok
}

// Properties returns all declared property descriptors.
func (e *Entity) Properties() []*prop.Descriptor {
	out := make([]*prop.Descriptor, 0, len(e.properties))
	for _, d := range e.properties {
		out = append(out, d)
	}
	return out
}

// Relation returns the declared relation descriptor by accessor name,
// falling back to a case-insensitive edge-type match. Declared
// relations always win over convention inference, so this is the first
// stop of every resolve.
func (e *Entity) Relation(accessor string) (*rel.Descriptor, bool) {
	if d, ok := e.relations[accessor]; ok {
		return d, true
	}
	if d, ok := e.byEdgeType[strings.ToUpper(accessor)]; ok {
		return d, true
	}
	return nil, false
}

// Relations returns all declared relation descriptors.
func (e *Entity) Relations() []*rel.Descriptor {
	out := make([]*rel.Descriptor, 0, len(e.relations))
	for _, d := range e.relations {
		out = append(out, d)
	}
	return out
}

// Registry maps entity labels to their declarations and answers the
// morphology lookups convention inference needs.
type Registry struct {
	mu       sync.RWMutex
	frozen   bool
	entities map[string]*Entity // by label
	byToken  map[string]*Entity // by lower-cased label token
	rules    *inflect.Ruleset
}

// New returns an empty registry with the default inflection ruleset.
func New() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
		byToken:  make(map[string]*Entity),
		rules:    inflect.NewDefaultRuleset(),
	}
}

// Register adds entity declarations to the registry. The node label is
// derived verbatim from the Go type name. Registering a duplicate
// label, or registering after the registry was frozen, is an error.
func (r *Registry) Register(entities ...grom.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.New("registry: frozen, declarations are immutable after first resolver use")
	}
	for _, e := range entities {
		if err := r.register(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(e grom.Entity) error {
	label := entityLabel(e)
	if label == "" {
		return fmt.Errorf("registry: cannot derive label from %T", e)
	}
	if _, ok := r.entities[label]; ok {
		return fmt.Errorf("registry: duplicate entity %q", label)
	}
	ent := &Entity{
		Label:      label,
		properties: make(map[string]*prop.Descriptor),
		relations:  make(map[string]*rel.Descriptor),
		byEdgeType: make(map[string]*rel.Descriptor),
	}
	props, rels := e.Properties(), e.Relations()
	// Mixin declarations merge ahead of the entity's own.
	if m, ok := e.(interface{ Mixin() []grom.Mixin }); ok {
		var mp []grom.Property
		var mr []grom.Relation
		for _, mx := range m.Mixin() {
			mp = append(mp, mx.Properties()...)
			mr = append(mr, mx.Relations()...)
		}
		props = append(mp, props...)
		rels = append(mr, rels...)
	}
	for _, p := range props {
		d := p.Descriptor()
		if _, ok := ent.properties[d.Name]; ok {
			return fmt.Errorf("registry: duplicate property %q on %q", d.Name, label)
		}
		ent.properties[d.Name] = d
	}
	for _, rr := range rels {
		d := rr.Descriptor()
		if d.EdgeType == "" {
			d.EdgeType = rel.DeriveEdgeType(r.rules.Singularize(d.Name))
		}
		if _, ok := ent.relations[d.Name]; ok {
			return fmt.Errorf("registry: duplicate relation %q on %q", d.Name, label)
		}
		// Indexed by upper case so the accessor fallback lookup reaches
		// edge types declared in any casing.
		key := strings.ToUpper(d.EdgeType)
		if prev, ok := ent.byEdgeType[key]; ok {
			return fmt.Errorf("registry: relations %q and %q on %q share edge type %s",
				prev.Name, d.Name, label, d.EdgeType)
		}
		ent.relations[d.Name] = d
		ent.byEdgeType[key] = d
	}
	r.entities[label] = ent
	r.byToken[strings.ToLower(label)] = ent
	return nil
}

// Freeze marks the registry immutable. Called by the resolver on
// construction; further Register calls fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Entity returns the registered entity by its exact label.
func (r *Registry) Entity(label string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[label]
	return e, ok
}

// Labels returns all registered labels.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entities))
	for l := range r.entities {
		out = append(out, l)
	}
	return out
}

// MatchLabel classifies an accessor token against the registered
// labels: an exact singular match means one-cardinality, an exact
// plural match means many-cardinality. A token matching both ways, or
// matching nothing, is an error; inference never guesses.
func (r *Registry) MatchLabel(token string) (ent *Entity, plural bool, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token = strings.ToLower(token)
	singular, singOK := r.byToken[token]
	var pluralOf *Entity
	if sing := r.rules.Singularize(token); sing != token {
		if e, ok := r.byToken[sing]; ok && r.rules.Pluralize(sing) == token {
			pluralOf = e
		}
	}
	switch {
	case singOK && pluralOf != nil && singular != pluralOf:
		return nil, false, fmt.Errorf("%w: %q is %s and the plural of %s",
			ErrAmbiguousToken, token, singular.Label, pluralOf.Label)
	case singOK:
		return singular, false, nil
	case pluralOf != nil:
		return pluralOf, true, nil
	}
	return nil, false, fmt.Errorf("%w: %q", ErrUnknownToken, token)
}

// Singularize returns the singular form of a token per the registry's
// inflection ruleset.
func (r *Registry) Singularize(token string) string {
	return r.rules.Singularize(token)
}

// Pluralize returns the plural form of a token per the registry's
// inflection ruleset.
func (r *Registry) Pluralize(token string) string {
	return r.rules.Pluralize(token)
}

// entityLabel derives the node label from the entity's Go type name.
func entityLabel(e grom.Entity) string {
	t := reflect.TypeOf(e)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
