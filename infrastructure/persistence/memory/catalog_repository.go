// Package memory provides the in-memory persistence backend. The catalog is
// generated at startup and never mutated afterwards, so the repository is a
// thin read-only adapter over the catalog aggregate.
package memory

import (
	"context"

	"go.uber.org/zap"

	"smartfetch/domain/core/aggregates"
	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
	apperrors "smartfetch/pkg/errors"
)

// CatalogRepository implements ports.ResourceRepository over an in-memory
// catalog aggregate
type CatalogRepository struct {
	catalog *aggregates.Catalog
	logger  *zap.Logger
}

// NewCatalogRepository creates a repository backed by the given catalog
func NewCatalogRepository(catalog *aggregates.Catalog, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog exposes the underlying aggregate for startup wiring
func (r *CatalogRepository) Catalog() *aggregates.Catalog {
	return r.catalog
}

// GetByID retrieves a resource by id. A miss returns a typed not-found error.
func (r *CatalogRepository) GetByID(ctx context.Context, id valueobjects.ResourceID) (*entities.Resource, error) {
	resource, exists := r.catalog.GetByID(id)
	if !exists {
		return nil, apperrors.ErrResourceNotFound.Clone().
			WithDetail("id", id.String())
	}
	return resource, nil
}

// GetByTag returns all resources carrying the exact tag, in catalog order.
// An unknown tag is not an error; it yields an empty slice.
func (r *CatalogRepository) GetByTag(ctx context.Context, tag string) ([]*entities.Resource, error) {
	return r.catalog.GetByTag(tag), nil
}

// GetByTags returns resources for several tags, concatenated in the given
// tag order with catalog order inside each tag
func (r *CatalogRepository) GetByTags(ctx context.Context, tags []string) ([]*entities.Resource, error) {
	resources := make([]*entities.Resource, 0)
	for _, tag := range tags {
		resources = append(resources, r.catalog.GetByTag(tag)...)
	}
	return resources, nil
}

// ListAll returns every resource in stable catalog order
func (r *CatalogRepository) ListAll(ctx context.Context) ([]*entities.Resource, error) {
	return r.catalog.ListAll(), nil
}

// UniqueTags returns each distinct tag once, in first-seen order
func (r *CatalogRepository) UniqueTags(ctx context.Context) ([]string, error) {
	return r.catalog.UniqueTags(), nil
}

// HasResource checks membership without retrieving the resource
func (r *CatalogRepository) HasResource(ctx context.Context, id valueobjects.ResourceID) bool {
	return r.catalog.HasResource(id)
}

// Count returns the total number of stored resources
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	return r.catalog.Count(), nil
}
