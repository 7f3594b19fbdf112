package queries

import "errors"

// ListResourcesQuery represents a query to list the full catalog.
// Limit 0 means no windowing; Offset is ignored when Limit is 0.
type ListResourcesQuery struct {
	Limit  int
	Offset int
}

// Validate validates the ListResourcesQuery
func (q ListResourcesQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	if q.Offset < 0 {
		return errors.New("offset must not be negative")
	}
	return nil
}

// ListResourcesResult represents the result of listing resources
type ListResourcesResult struct {
	Resources []ResourceDTO `json:"resources"`
	Count     int           `json:"count"`
	Total     int           `json:"-"`
}
