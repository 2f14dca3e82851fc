// Package mixin provides reusable schema components that entities can
// merge into their own declarations.
package mixin

import (
	"time"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/schema/prop"
)

// Schema is the default implementation of a mixin: no properties, no
// relations. Concrete mixins embed it and override what they add.
type Schema struct{}

// Properties of the mixin.
func (Schema) Properties() []grom.Property { return nil }

// Relations of the mixin.
func (Schema) Relations() []grom.Relation { return nil }

// Time adds created_at and updated_at properties to the entity.
type Time struct{ Schema }

// Properties of the Time mixin. The timestamps are generated per
// write, not captured at registration.
func (Time) Properties() []grom.Property {
	return []grom.Property{
		prop.Time("created_at").
			Immutable().
			DefaultFunc(func() any { return time.Now() }),
		prop.Time("updated_at").
			DefaultFunc(func() any { return time.Now() }),
	}
}
