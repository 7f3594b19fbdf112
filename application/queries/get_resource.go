package queries

import "errors"

// GetResourceQuery represents a query to get a single resource by ID
type GetResourceQuery struct {
	ID string
}

// Validate validates the GetResourceQuery
func (q GetResourceQuery) Validate() error {
	if q.ID == "" {
		return errors.New("resource ID is required")
	}
	return nil
}

// GetResourceResult represents the result of getting a resource
type GetResourceResult struct {
	Resource ResourceDTO `json:"resource"`
}
