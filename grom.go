// Package grom provides the schema-facing building blocks of the grom
// object-graph mapper: the Entity contract implemented by user-defined
// schemas, the error taxonomy shared by all layers, and the Cache
// capability consumed by the relationship resolver.
//
// An entity schema embeds grom.Schema and declares its properties and
// relations with the fluent builders from schema/prop and schema/rel:
//
//	type User struct{ grom.Schema }
//
//	func (User) Properties() []grom.Property {
//	    return []grom.Property{
//	        prop.String("name").NotEmpty(),
//	        prop.Int("age").Optional(),
//	    }
//	}
//
//	func (User) Relations() []grom.Relation {
//	    return []grom.Relation{
//	        rel.To("country", Country{}).Type("NATIONAL").Unique(),
//	        rel.To("friends", User{}),
//	    }
//	}
//
// Entities are collected into a registry.Registry, and a resolve.Resolver
// maps accessor names onto graph-store operations, either through these
// declarations or through naming-convention inference.
package grom

import (
	"github.com/grom-db/grom/schema/prop"
	"github.com/grom-db/grom/schema/rel"
)

// Property is the interface implemented by property builders.
// See the schema/prop package for the concrete builders.
type Property interface {
	Descriptor() *prop.Descriptor
}

// Relation is the interface implemented by relation builders.
// See the schema/rel package for the concrete builders.
type Relation interface {
	Descriptor() *rel.Descriptor
}

// Entity is implemented by all user-defined schemas. The entity type
// name doubles as its node label, kept verbatim (singular, case
// preserved).
type Entity interface {
	Properties() []Property
	Relations() []Relation
}

// Mixin is a reusable set of property and relation declarations.
// Entities opt in by implementing:
//
//	func (User) Mixin() []grom.Mixin {
//	    return []grom.Mixin{mixin.Time{}}
//	}
//
// Mixin declarations are merged ahead of the entity's own at
// registration time.
type Mixin interface {
	Properties() []Property
	Relations() []Relation
}

// Schema is the default implementation of Entity. User schemas embed it
// and override the methods they need:
//
//	type Country struct{ grom.Schema }
type Schema struct{}

// Properties of the schema. Defaults to no declared properties; any
// property access goes through the uncached introspection path.
func (Schema) Properties() []Property { return nil }

// Relations of the schema. Defaults to no declared relations; accessor
// names are resolved by convention inference alone.
func (Schema) Relations() []Relation { return nil }
