package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ResourceID is a value object representing a unique resource identifier.
// Value objects are immutable and have no identity beyond their value.
type ResourceID struct {
	value string
}

// NewResourceID creates a new random ResourceID
func NewResourceID() ResourceID {
	return ResourceID{value: uuid.New().String()}
}

// NewResourceIDFromString creates a ResourceID from an existing string
func NewResourceIDFromString(id string) (ResourceID, error) {
	if id == "" {
		return ResourceID{}, errors.New("resource ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ResourceID{}, errors.New("resource ID must be a valid UUID")
	}
	return ResourceID{value: id}, nil
}

// String returns the string representation of the ResourceID
func (id ResourceID) String() string {
	return id.value
}

// Equals checks if two ResourceIDs are equal
func (id ResourceID) Equals(other ResourceID) bool {
	return id.value == other.value
}

// IsZero checks if the ResourceID is the zero value
func (id ResourceID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ResourceID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ResourceID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ResourceID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
