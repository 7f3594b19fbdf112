// Package fixtures provides builders for test data with sensible defaults.
package fixtures

import (
	"fmt"

	"smartfetch/domain/core/aggregates"
	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
)

// ResourceBuilder helps create test resources with default values
type ResourceBuilder struct {
	id          string
	name        string
	description string
	tag         string
}

// NewResourceBuilder creates a builder producing a valid default resource
func NewResourceBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		id:          valueobjects.NewResourceID().String(),
		name:        "Test Resource",
		description: "A short description used in tests.",
		tag:         "home",
	}
}

// WithID sets the resource ID from a UUID string
func (b *ResourceBuilder) WithID(id string) *ResourceBuilder {
	b.id = id
	return b
}

// WithSequence sets a deterministic, valid UUID derived from n
func (b *ResourceBuilder) WithSequence(n int) *ResourceBuilder {
	b.id = fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	return b
}

// WithName sets the resource name
func (b *ResourceBuilder) WithName(name string) *ResourceBuilder {
	b.name = name
	return b
}

// WithDescription sets the resource description
func (b *ResourceBuilder) WithDescription(description string) *ResourceBuilder {
	b.description = description
	return b
}

// WithTag sets the resource tag
func (b *ResourceBuilder) WithTag(tag string) *ResourceBuilder {
	b.tag = tag
	return b
}

// Build constructs the resource
func (b *ResourceBuilder) Build() (*entities.Resource, error) {
	id, err := valueobjects.NewResourceIDFromString(b.id)
	if err != nil {
		return nil, err
	}
	tag, err := valueobjects.NewTag(b.tag)
	if err != nil {
		return nil, err
	}
	return entities.NewResource(id, b.name, b.description, tag)
}

// MustBuild constructs the resource and panics on error
func (b *ResourceBuilder) MustBuild() *entities.Resource {
	resource, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("fixtures: building resource: %v", err))
	}
	return resource
}

// Resources builds n resources with sequential IDs cycling over the given
// tags. With tags ("home", "car") and n=3 it yields home, car, home.
func Resources(n int, tags ...string) []*entities.Resource {
	if len(tags) == 0 {
		tags = []string{"home"}
	}
	resources := make([]*entities.Resource, 0, n)
	for i := 0; i < n; i++ {
		resources = append(resources, NewResourceBuilder().
			WithSequence(i+1).
			WithName(fmt.Sprintf("Resource %d", i+1)).
			WithTag(tags[i%len(tags)]).
			MustBuild())
	}
	return resources
}

// Catalog builds a catalog aggregate from the given resources
func Catalog(resources ...*entities.Resource) (*aggregates.Catalog, error) {
	return aggregates.NewCatalog(resources)
}

// MustCatalog builds a catalog aggregate and panics on error
func MustCatalog(resources ...*entities.Resource) *aggregates.Catalog {
	catalog, err := Catalog(resources...)
	if err != nil {
		panic(fmt.Sprintf("fixtures: building catalog: %v", err))
	}
	return catalog
}
