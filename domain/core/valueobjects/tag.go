package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"smartfetch/domain/config"
	pkgerrors "smartfetch/pkg/errors"
)

// Tag is a value object for a resource's single search tag.
// Tags come from a closed vocabulary; free-text queries are mapped onto
// that vocabulary by the semantic matcher, never stored here.
type Tag struct {
	value string
}

// NewTag creates a tag with validation using default configuration
func NewTag(value string) (Tag, error) {
	return NewTagWithConfig(value, config.DefaultDomainConfig())
}

// NewTagWithConfig creates a tag with validation and configuration
func NewTagWithConfig(value string, cfg *config.DomainConfig) (Tag, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	value = strings.TrimSpace(value)

	if value == "" {
		return Tag{}, pkgerrors.NewValidationError("tag cannot be empty")
	}

	if utf8.RuneCountInString(value) > cfg.MaxTagLength {
		return Tag{}, fmt.Errorf("tag exceeds maximum length of %d characters", cfg.MaxTagLength)
	}

	if !config.InVocabulary(value) {
		return Tag{}, pkgerrors.NewValidationError(fmt.Sprintf("tag %q is not in the vocabulary", value))
	}

	return Tag{value: value}, nil
}

// String returns the tag value
func (t Tag) String() string {
	return t.value
}

// Equals checks if two tags are equal
func (t Tag) Equals(other Tag) bool {
	return t.value == other.value
}

// IsZero checks if the tag is the zero value
func (t Tag) IsZero() bool {
	return t.value == ""
}

// MarshalJSON implements json.Marshaler
func (t Tag) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Tag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("Tag must be a string")
	}
	t.value = string(data[1 : len(data)-1])
	return nil
}
