package valueobjects

import (
	"strings"
)

// resourcePathPrefix is the canonical path prefix for internal deep links.
const resourcePathPrefix = "/resources/"

// Link is a value object for a resource citation link. Internal links take
// the canonical form /resources/{uuid}; anything starting with http:// or
// https:// is treated as external and is outside the catalog's authority.
type Link struct {
	value string
}

// NewResourceLink builds the canonical internal deep link for a resource id
func NewResourceLink(id ResourceID) Link {
	return Link{value: resourcePathPrefix + id.String()}
}

// ParseLink wraps a raw link string without validating its target.
// Use ResourceID to confirm the embedded id is well formed.
func ParseLink(raw string) Link {
	return Link{value: strings.TrimSpace(raw)}
}

// String returns the link value
func (l Link) String() string {
	return l.value
}

// IsZero checks if the link is the zero value
func (l Link) IsZero() bool {
	return l.value == ""
}

// IsExternal reports whether the link points outside the catalog
func (l Link) IsExternal() bool {
	return strings.HasPrefix(l.value, "http://") || strings.HasPrefix(l.value, "https://")
}

// IsResourcePath reports whether the link has the internal /resources/ shape
func (l Link) IsResourcePath() bool {
	return strings.HasPrefix(l.value, resourcePathPrefix)
}

// ResourceID extracts the id portion of an internal link. The second return
// is false when the link is not an internal resource path or the embedded id
// is not a valid UUID.
func (l Link) ResourceID() (ResourceID, bool) {
	if !l.IsResourcePath() {
		return ResourceID{}, false
	}
	raw := strings.TrimPrefix(l.value, resourcePathPrefix)
	if raw == "" || strings.Contains(raw, "/") {
		return ResourceID{}, false
	}
	id, err := NewResourceIDFromString(strings.ToLower(raw))
	if err != nil {
		return ResourceID{}, false
	}
	return id, true
}

// Equals checks if two links are equal
func (l Link) Equals(other Link) bool {
	return l.value == other.value
}

// MarshalJSON implements json.Marshaler
func (l Link) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.value + `"`), nil
}
