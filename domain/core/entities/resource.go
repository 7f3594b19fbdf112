package entities

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"smartfetch/domain/config"
	"smartfetch/domain/core/valueobjects"
	pkgerrors "smartfetch/pkg/errors"
)

// Resource is the main entity of the catalog: an immutable record carrying
// exactly one search tag. Resources are constructed in bulk at startup and
// never mutated afterwards, which is what lets the catalog serve concurrent
// reads without locking.
type Resource struct {
	// Private fields ensure encapsulation
	id          valueobjects.ResourceID
	name        string
	description string
	tag         valueobjects.Tag
}

// NewResource creates a resource with full business rule validation
func NewResource(id valueobjects.ResourceID, name, description string, tag valueobjects.Tag) (*Resource, error) {
	return NewResourceWithConfig(id, name, description, tag, config.DefaultDomainConfig())
}

// NewResourceWithConfig creates a resource with validation and configuration
func NewResourceWithConfig(id valueobjects.ResourceID, name, description string, tag valueobjects.Tag, cfg *config.DomainConfig) (*Resource, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("resource id cannot be empty")
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return nil, pkgerrors.NewValidationError("resource name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxNameLength {
		return nil, fmt.Errorf("resource name exceeds maximum length of %d characters", cfg.MaxNameLength)
	}

	if description == "" {
		return nil, pkgerrors.NewValidationError("resource description cannot be empty")
	}
	if utf8.RuneCountInString(description) > cfg.MaxDescriptionLength {
		return nil, fmt.Errorf("resource description exceeds maximum length of %d characters", cfg.MaxDescriptionLength)
	}

	if tag.IsZero() {
		return nil, pkgerrors.NewValidationError("resource tag cannot be empty")
	}

	return &Resource{
		id:          id,
		name:        name,
		description: description,
		tag:         tag,
	}, nil
}

// ID returns the resource's unique identifier
func (r *Resource) ID() valueobjects.ResourceID {
	return r.id
}

// Name returns the resource's human-readable name
func (r *Resource) Name() string {
	return r.name
}

// Description returns the resource's descriptive text
func (r *Resource) Description() string {
	return r.description
}

// Tag returns the resource's single search tag
func (r *Resource) Tag() valueobjects.Tag {
	return r.tag
}

// Link returns the canonical deep link for this resource
func (r *Resource) Link() valueobjects.Link {
	return valueobjects.NewResourceLink(r.id)
}

// Summary returns the description truncated to maxRunes, with an ellipsis
// appended when truncation occurred.
func (r *Resource) Summary(maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(r.description) <= maxRunes {
		return r.description
	}
	runes := []rune(r.description)
	return string(runes[:maxRunes]) + "..."
}
