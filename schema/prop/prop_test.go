package prop_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grom-db/grom/schema/prop"
)

func TestPropBuilders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *prop.Descriptor
		validate func(t *testing.T, desc *prop.Descriptor)
	}{
		{
			name: "string",
			build: func() *prop.Descriptor {
				return prop.String("name").Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				assert.Equal(t, "name", desc.Name)
				assert.Equal(t, prop.TypeString, desc.Type)
				assert.False(t, desc.Optional)
				assert.Equal(t, "name", desc.Key())
			},
		},
		{
			name: "int_with_default",
			build: func() *prop.Descriptor {
				return prop.Int("age").Optional().Default(int64(0)).Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				assert.Equal(t, prop.TypeInt, desc.Type)
				assert.True(t, desc.Optional)
				assert.Equal(t, int64(0), desc.Default)
			},
		},
		{
			name: "default_func_generates_per_call",
			build: func() *prop.Descriptor {
				n := 0
				return prop.Int("seq").DefaultFunc(func() any {
					n++
					return int64(n)
				}).Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				first, ok := desc.DefaultValue()
				assert.True(t, ok)
				second, ok := desc.DefaultValue()
				assert.True(t, ok)
				assert.Equal(t, int64(1), first)
				assert.Equal(t, int64(2), second)
				// nil passes validation when a generator is declared.
				assert.NoError(t, desc.Validate(nil))
			},
		},
		{
			name: "storage_key",
			build: func() *prop.Descriptor {
				return prop.Float("score").StorageKey("score_v2").Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				assert.Equal(t, "score", desc.Name)
				assert.Equal(t, "score_v2", desc.Key())
			},
		},
		{
			name: "indexed_immutable",
			build: func() *prop.Descriptor {
				return prop.String("email").Indexed().Immutable().Comment("login email").Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				assert.True(t, desc.Indexed)
				assert.True(t, desc.Immutable)
				assert.Equal(t, "login email", desc.Comment)
			},
		},
		{
			name: "bool_and_time",
			build: func() *prop.Descriptor {
				assert.Equal(t, prop.TypeBool, prop.Bool("active").Descriptor().Type)
				return prop.Time("created_at").Descriptor()
			},
			validate: func(t *testing.T, desc *prop.Descriptor) {
				assert.Equal(t, prop.TypeTime, desc.Type)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			desc := tt.build()
			tt.validate(t, desc)
		})
	}
}

func TestPropValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		desc    *prop.Descriptor
		value   any
		wantErr string
	}{
		{
			name:  "string_ok",
			desc:  prop.String("name").Descriptor(),
			value: "alice",
		},
		{
			name:    "string_type_mismatch",
			desc:    prop.String("name").Descriptor(),
			value:   42,
			wantErr: "not assignable",
		},
		{
			name:  "int_accepts_int64",
			desc:  prop.Int("age").Descriptor(),
			value: int64(30),
		},
		{
			name:  "int_accepts_int",
			desc:  prop.Int("age").Descriptor(),
			value: 30,
		},
		{
			name:    "nil_non_optional",
			desc:    prop.String("name").Descriptor(),
			value:   nil,
			wantErr: "nil value",
		},
		{
			name:  "nil_optional",
			desc:  prop.String("name").Optional().Descriptor(),
			value: nil,
		},
		{
			name:  "nil_with_default",
			desc:  prop.String("name").Default("unknown").Descriptor(),
			value: nil,
		},
		{
			name:    "not_empty",
			desc:    prop.String("name").NotEmpty().Descriptor(),
			value:   "",
			wantErr: "empty",
		},
		{
			name:    "max_len",
			desc:    prop.String("code").MaxLen(2).Descriptor(),
			value:   "abc",
			wantErr: "longer than 2",
		},
		{
			name:    "positive",
			desc:    prop.Int("age").Positive().Descriptor(),
			value:   int64(-1),
			wantErr: "not positive",
		},
		{
			name:  "positive_ok",
			desc:  prop.Int("age").Positive().Descriptor(),
			value: int64(7),
		},
		{
			name:  "time_ok",
			desc:  prop.Time("created_at").Descriptor(),
			value: time.Now(),
		},
		{
			name: "custom_validator",
			desc: prop.String("email").Validate(func(v any) error {
				return errors.New("always rejected")
			}).Descriptor(),
			value:   "x@y",
			wantErr: "always rejected",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.desc.Validate(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTypeZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", prop.TypeString.Zero())
	assert.Equal(t, int64(0), prop.TypeInt.Zero())
	assert.Equal(t, float64(0), prop.TypeFloat.Zero())
	assert.Equal(t, false, prop.TypeBool.Zero())
	assert.Equal(t, time.Time{}, prop.TypeTime.Zero())

	assert.Equal(t, "string", prop.TypeString.String())
	assert.Equal(t, "invalid", prop.TypeInvalid.String())
}
