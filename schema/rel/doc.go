// Package rel provides fluent builders for declaring entity relations
// in the grom object-graph mapper.
//
// Relations describe directed, typed, property-bearing edges between
// nodes. A declaration fixes everything convention inference would
// otherwise have to guess: direction, edge type, target entity and
// cardinality. Declared relations always win over inferred ones.
//
// # Direction
//
//   - rel.To: the declaring entity is the edge source (outgoing)
//   - rel.From: the declaring entity is the edge destination (incoming)
//
// # Cardinality
//
// Cardinality is controlled by the Unique() modifier:
//
//	// Has-many (default): User has many Friends
//	rel.To("friends", User.Type)
//
//	// Has-one: User has one Country through a NATIONAL edge
//	rel.To("country", Country{}).Type("NATIONAL").Unique()
//
// Assigning a unique relation atomically replaces any existing edge of
// that type and direction; assigning a non-unique relation appends.
//
// # Edge Properties
//
// Relations may declare the property keys every edge of this type is
// expected to carry:
//
//	rel.To("employer", Company{}).
//	    Type("EMPLOYED_BY").
//	    Unique().
//	    Properties("since", "position")
//
// Assignments that omit a declared key go through the resolver's
// injectable defaults policy; the default policy rejects them with a
// MissingPropertiesError.
//
// # Result Caching
//
// Queries through a declared relation may opt into result caching:
//
//	rel.To("country", Country{}).Type("NATIONAL").Unique().
//	    Cache(5 * time.Minute)
//
// Inferred relations never cache; every undeclared access costs one
// store round-trip.
package rel
