// Package prop provides fluent builders for declaring typed entity
// properties in the grom object-graph mapper.
//
// Declared properties are statically typed and may be indexed; they are
// validated on write and served from the node payload on read.
// Properties added at runtime without a declaration remain legal, but
// every access to them is a separate store round-trip and never cached.
//
//	func (User) Properties() []grom.Property {
//	    return []grom.Property{
//	        prop.String("name").NotEmpty().MaxLen(100),
//	        prop.Int("age").Optional().Positive(),
//	        prop.Time("joined").Default(time.Now()),
//	        prop.String("email").Indexed(),
//	    }
//	}
package prop
