// Package schema groups the building blocks for defining grom entity
// schemas:
//
//   - [prop]: typed property builders
//   - [rel]: relation builders (direction, edge type, cardinality)
//   - [mixin]: reusable schema components
//
// Define an entity by embedding grom.Schema and implementing the
// methods you need:
//
//	type User struct{ grom.Schema }
//
//	func (User) Properties() []grom.Property {
//	    return []grom.Property{
//	        prop.String("name").NotEmpty(),
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
// The entity type name is used verbatim as the node label: singular,
// case preserved. Plural forms of the label are recognized by the
// resolver's convention inference, never stored.
package schema
