package prop

import (
	"fmt"
	"time"
)

// Type is the set of property value types a declared property may carry.
type Type int

// Property types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	}
	return "invalid"
}

// Zero returns the zero value for the type.
func (t Type) Zero() any {
	switch t {
	case TypeString:
		return ""
	case TypeInt:
		return int64(0)
	case TypeFloat:
		return float64(0)
	case TypeBool:
		return false
	case TypeTime:
		return time.Time{}
	}
	return nil
}

// Validator is a value validator attached to a property declaration.
type Validator func(any) error

// A Descriptor for property configuration. Built once at entity
// registration time and immutable afterwards.
type Descriptor struct {
	Name       string      // Property name.
	Type       Type        // Declared value type.
	Optional   bool        // May be absent on write.
	Indexed    bool        // Request a store index for the property.
	Immutable  bool        // Cannot be changed after creation.
	Default    any         // Default value, nil if none.
	DefaultFn  func() any  // Default generator, invoked per write; nil if none.
	StorageKey string      // Store key override; Name when empty.
	Comment    string      // Optional comment.
	Validators []Validator // Value validators, run in order.
}

// Key returns the key the property is stored under.
func (d *Descriptor) Key() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// DefaultValue returns the property's default, invoking the generator
// when one is declared. The generator wins over a static default.
func (d *Descriptor) DefaultValue() (any, bool) {
	if d.DefaultFn != nil {
		return d.DefaultFn(), true
	}
	if d.Default != nil {
		return d.Default, true
	}
	return nil, false
}

// Validate checks a value against the declared type and validators.
func (d *Descriptor) Validate(v any) error {
	if v == nil {
		if d.Optional || d.Default != nil || d.DefaultFn != nil {
			return nil
		}
		return fmt.Errorf("property %q: nil value for non-optional property", d.Name)
	}
	if err := checkType(d.Type, v); err != nil {
		return fmt.Errorf("property %q: %w", d.Name, err)
	}
	for _, fn := range d.Validators {
		if err := fn(v); err != nil {
			return fmt.Errorf("property %q: %w", d.Name, err)
		}
	}
	return nil
}

func checkType(t Type, v any) error {
	ok := false
	switch t {
	case TypeString:
		_, ok = v.(string)
	case TypeInt:
		switch v.(type) {
		case int, int32, int64:
			ok = true
		}
	case TypeFloat:
		switch v.(type) {
		case float32, float64:
			ok = true
		}
	case TypeBool:
		_, ok = v.(bool)
	case TypeTime:
		_, ok = v.(time.Time)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) is not assignable to type %s", v, v, t)
	}
	return nil
}

// String returns a new builder for a string property.
func String(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeString}}
}

// Int returns a new builder for an integer property.
func Int(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeInt}}
}

// Float returns a new builder for a float property.
func Float(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeFloat}}
}

// Bool returns a new builder for a boolean property.
func Bool(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeBool}}
}

// Time returns a new builder for a time property.
func Time(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeTime}}
}

// Builder is the builder for property declarations.
type Builder struct {
	desc *Descriptor
}

// Optional marks the property as optional on write.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Indexed requests a store index for the property. Declared, indexed
// properties are the fast path; undeclared properties are resolved per
// access with no caching.
func (b *Builder) Indexed() *Builder {
	b.desc.Indexed = true
	return b
}

// Immutable marks the property as immutable after creation.
func (b *Builder) Immutable() *Builder {
	b.desc.Immutable = true
	return b
}

// Default sets a static default value for the property.
func (b *Builder) Default(v any) *Builder {
	b.desc.Default = v
	return b
}

// DefaultFunc sets a generator invoked on every write that omits the
// property, for defaults that must be computed at write time:
//
//	prop.Time("created_at").DefaultFunc(func() any { return time.Now() })
func (b *Builder) DefaultFunc(fn func() any) *Builder {
	b.desc.DefaultFn = fn
	return b
}

// StorageKey overrides the key the property is stored under.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Comment sets a comment on the property.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Validate attaches a custom validator to the property.
func (b *Builder) Validate(fn Validator) *Builder {
	b.desc.Validators = append(b.desc.Validators, fn)
	return b
}

// NotEmpty adds a validator rejecting empty strings.
func (b *Builder) NotEmpty() *Builder {
	return b.Validate(func(v any) error {
		if s, ok := v.(string); ok && s == "" {
			return fmt.Errorf("value is empty")
		}
		return nil
	})
}

// MaxLen adds a validator rejecting strings longer than n.
func (b *Builder) MaxLen(n int) *Builder {
	return b.Validate(func(v any) error {
		if s, ok := v.(string); ok && len(s) > n {
			return fmt.Errorf("value is longer than %d characters", n)
		}
		return nil
	})
}

// Positive adds a validator rejecting non-positive numbers.
func (b *Builder) Positive() *Builder {
	return b.Validate(func(v any) error {
		if !positive(v) {
			return fmt.Errorf("value is not positive")
		}
		return nil
	})
}

func positive(v any) bool {
	switch n := v.(type) {
	case int:
		return n > 0
	case int32:
		return n > 0
	case int64:
		return n > 0
	case float32:
		return n > 0
	case float64:
		return n > 0
	}
	return true
}

// Descriptor implements the grom.Property interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
