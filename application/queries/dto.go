package queries

import "smartfetch/domain/core/entities"

// ResourceDTO is the wire representation of a catalog resource
type ResourceDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	Link        string `json:"link"`
}

// NewResourceDTO converts a domain resource to its wire representation
func NewResourceDTO(r *entities.Resource) ResourceDTO {
	return ResourceDTO{
		ID:          r.ID().String(),
		Name:        r.Name(),
		Description: r.Description(),
		Tag:         r.Tag().String(),
		Link:        r.Link().String(),
	}
}

// NewResourceDTOs converts a slice of domain resources, preserving order
func NewResourceDTOs(resources []*entities.Resource) []ResourceDTO {
	dtos := make([]ResourceDTO, 0, len(resources))
	for _, r := range resources {
		dtos = append(dtos, NewResourceDTO(r))
	}
	return dtos
}
