package queries

import "errors"

// SearchByTagQuery represents a query for resources carrying an exact tag
type SearchByTagQuery struct {
	Tag string
}

// Validate validates the SearchByTagQuery
func (q SearchByTagQuery) Validate() error {
	if q.Tag == "" {
		return errors.New("tag is required")
	}
	return nil
}

// SearchByTagResult represents the result of a tag search.
// An unknown tag yields an empty Resources slice, count 0.
type SearchByTagResult struct {
	Resources []ResourceDTO `json:"resources"`
	Count     int           `json:"count"`
	Tag       string        `json:"tag"`
}
