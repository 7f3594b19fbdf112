package aggregates

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
	"smartfetch/domain/events"
	pkgerrors "smartfetch/pkg/errors"
)

// CatalogID represents a unique catalog identifier
type CatalogID string

// NewCatalogID creates a new random CatalogID
func NewCatalogID() CatalogID {
	return CatalogID(uuid.New().String())
}

// String returns the string representation
func (id CatalogID) String() string {
	return string(id)
}

// Catalog is the aggregate root for the resource catalog. It owns the
// primary id index and the secondary tag index and guarantees they stay
// consistent: every indexed id resolves to a stored resource and every
// stored resource is indexed under exactly its own tag.
//
// The catalog is built once in a single pass and is read-only afterwards,
// so concurrent readers need no locking.
type Catalog struct {
	id        CatalogID
	resources map[valueobjects.ResourceID]*entities.Resource
	byTag     map[string][]valueobjects.ResourceID
	order     []valueobjects.ResourceID
	tagOrder  []string
	loadedAt  time.Time
	events    []events.DomainEvent
}

// NewCatalog builds a catalog from generated resources in one pass.
// A duplicate id is rejected with a conflict error rather than silently
// overwriting the earlier resource.
func NewCatalog(resources []*entities.Resource) (*Catalog, error) {
	now := time.Now()
	catalog := &Catalog{
		id:        NewCatalogID(),
		resources: make(map[valueobjects.ResourceID]*entities.Resource, len(resources)),
		byTag:     make(map[string][]valueobjects.ResourceID),
		order:     make([]valueobjects.ResourceID, 0, len(resources)),
		tagOrder:  []string{},
		loadedAt:  now,
		events:    []events.DomainEvent{},
	}

	for _, resource := range resources {
		if resource == nil {
			return nil, errors.New("resource cannot be nil")
		}

		id := resource.ID()
		if _, exists := catalog.resources[id]; exists {
			return nil, pkgerrors.ErrDuplicateResourceID.Clone().
				WithDetail("id", id.String())
		}

		tag := resource.Tag().String()
		if _, seen := catalog.byTag[tag]; !seen {
			catalog.tagOrder = append(catalog.tagOrder, tag)
		}

		catalog.resources[id] = resource
		catalog.byTag[tag] = append(catalog.byTag[tag], id)
		catalog.order = append(catalog.order, id)
	}

	catalog.addEvent(events.NewCatalogLoaded(
		catalog.id.String(),
		len(catalog.resources),
		len(catalog.byTag),
		now,
	))

	return catalog, nil
}

// ID returns the catalog's unique identifier
func (c *Catalog) ID() CatalogID {
	return c.id
}

// LoadedAt returns when the catalog was constructed
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Count returns the total number of resources
func (c *Catalog) Count() int {
	return len(c.resources)
}

// GetByID retrieves a resource by id. A miss is a normal outcome reported
// through the boolean, never a panic or an error.
func (c *Catalog) GetByID(id valueobjects.ResourceID) (*entities.Resource, bool) {
	resource, exists := c.resources[id]
	return resource, exists
}

// HasResource checks membership without retrieving the resource
func (c *Catalog) HasResource(id valueobjects.ResourceID) bool {
	_, exists := c.resources[id]
	return exists
}

// GetByTag returns all resources carrying the exact tag, in construction
// order. An unknown tag yields an empty slice.
func (c *Catalog) GetByTag(tag string) []*entities.Resource {
	ids := c.byTag[tag]
	resources := make([]*entities.Resource, 0, len(ids))
	for _, id := range ids {
		resources = append(resources, c.resources[id])
	}
	return resources
}

// GetByIDs retrieves multiple resources, skipping ids not in the catalog
func (c *Catalog) GetByIDs(ids []valueobjects.ResourceID) []*entities.Resource {
	resources := make([]*entities.Resource, 0, len(ids))
	for _, id := range ids {
		if resource, exists := c.resources[id]; exists {
			resources = append(resources, resource)
		}
	}
	return resources
}

// ListAll returns every resource in stable construction order
func (c *Catalog) ListAll() []*entities.Resource {
	resources := make([]*entities.Resource, 0, len(c.order))
	for _, id := range c.order {
		resources = append(resources, c.resources[id])
	}
	return resources
}

// UniqueTags returns each distinct tag once, in first-seen order
func (c *Catalog) UniqueTags() []string {
	tags := make([]string, len(c.tagOrder))
	copy(tags, c.tagOrder)
	return tags
}

// Validate ensures catalog invariants: the secondary index and the primary
// map must describe exactly the same set of resources.
func (c *Catalog) Validate() error {
	indexed := 0
	for tag, ids := range c.byTag {
		for _, id := range ids {
			resource, exists := c.resources[id]
			if !exists {
				return errors.New("tag index references non-existent resource")
			}
			if resource.Tag().String() != tag {
				return errors.New("tag index entry disagrees with resource tag")
			}
			indexed++
		}
	}
	if indexed != len(c.resources) {
		return errors.New("tag index count mismatch")
	}
	if len(c.order) != len(c.resources) {
		return errors.New("construction order count mismatch")
	}
	if len(c.tagOrder) != len(c.byTag) {
		return errors.New("tag order count mismatch")
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (c *Catalog) GetUncommittedEvents() []events.DomainEvent {
	allEvents := make([]events.DomainEvent, len(c.events))
	copy(allEvents, c.events)
	return allEvents
}

// MarkEventsAsCommitted clears all uncommitted events
func (c *Catalog) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

func (c *Catalog) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}
