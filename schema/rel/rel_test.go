package rel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/schema/rel"
)

// Test schema types for relation testing.
type (
	User    struct{ grom.Schema }
	Country struct{ grom.Schema }
	Company struct{ grom.Schema }
)

func TestRelTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *rel.Descriptor
		validate func(t *testing.T, desc *rel.Descriptor)
	}{
		{
			name: "basic_relation",
			build: func() *rel.Descriptor {
				return rel.To("friends", User{}).Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, "friends", desc.Name)
				assert.Equal(t, "User", desc.Target)
				assert.Equal(t, rel.Out, desc.Direction)
				assert.Empty(t, desc.EdgeType)
				assert.False(t, desc.Unique)
				assert.False(t, desc.Required)
				assert.Zero(t, desc.CacheTTL)
			},
		},
		{
			name: "unique_with_edge_type",
			build: func() *rel.Descriptor {
				return rel.To("country", Country{}).Type("NATIONAL").Unique().Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, "country", desc.Name)
				assert.Equal(t, "Country", desc.Target)
				assert.Equal(t, "NATIONAL", desc.EdgeType)
				assert.True(t, desc.Unique)
			},
		},
		{
			name: "with_properties",
			build: func() *rel.Descriptor {
				return rel.To("employer", Company{}).
					Type("EMPLOYED_BY").
					Unique().
					Properties("since", "position").
					Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, []string{"since", "position"}, desc.PropKeys)
			},
		},
		{
			name: "with_cache",
			build: func() *rel.Descriptor {
				return rel.To("country", Country{}).Unique().Cache(5 * time.Minute).Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, 5*time.Minute, desc.CacheTTL)
			},
		},
		{
			name: "required_immutable_comment",
			build: func() *rel.Descriptor {
				return rel.To("country", Country{}).
					Unique().
					Required().
					Immutable().
					Comment("country of citizenship").
					Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.True(t, desc.Required)
				assert.True(t, desc.Immutable)
				assert.Equal(t, "country of citizenship", desc.Comment)
			},
		},
		{
			name: "pointer_target",
			build: func() *rel.Descriptor {
				return rel.To("country", &Country{}).Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, "Country", desc.Target)
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

func TestRelFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *rel.Descriptor
		validate func(t *testing.T, desc *rel.Descriptor)
	}{
		{
			name: "basic_inverse",
			build: func() *rel.Descriptor {
				return rel.From("employer", Company{}).Type("EMPLOYS").Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, "employer", desc.Name)
				assert.Equal(t, "Company", desc.Target)
				assert.Equal(t, rel.In, desc.Direction)
				assert.Equal(t, "EMPLOYS", desc.EdgeType)
			},
		},
		{
			name: "inverse_unique",
			build: func() *rel.Descriptor {
				return rel.From("sponsor", User{}).Unique().Descriptor()
			},
			validate: func(t *testing.T, desc *rel.Descriptor) {
				assert.Equal(t, rel.In, desc.Direction)
				assert.True(t, desc.Unique)
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

func TestDeriveEdgeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  string
	}{
		{"country", "COUNTRY"},
		{"friend", "FRIEND"},
		{"employed by", "EMPLOYED_BY"},
	}
	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, rel.DeriveEdgeType(tt.token))
	}
}
