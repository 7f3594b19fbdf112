package config

import (
	"fmt"
	"time"
)

// TagVocabulary is the closed set of tags every generated resource draws
// from. Semantic search maps free-text queries onto this set.
var TagVocabulary = []string{
	"home",
	"car",
	"technology",
	"food",
	"health",
	"finance",
	"travel",
	"education",
	"sports",
	"music",
	"fashion",
	"nature",
	"work",
	"family",
	"art",
}

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Resource constraints
	MaxNameLength        int
	MaxDescriptionLength int
	MaxTagLength         int

	// Query constraints
	MaxNLQueryLength    int
	MaxAgentQueryLength int

	// Search behavior
	ResultCap       int
	SummaryMaxRunes int
	AmbiguityMargin float64
	SuggestionLimit int

	// Agent behavior
	DefaultMaxTokens int
	MinMaxTokens     int
	MaxMaxTokens     int
	CitationLimit    int
	AgentTimeout     time.Duration

	// Dataset shape
	DefaultResourceCount int
	FullDatasetCount     int
	MinPerTagAtFullCount int
	DatasetSeed          uint64

	// Runtime probing
	ProbeTimeout time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Resource constraints
		MaxNameLength:        200,
		MaxDescriptionLength: 1000,
		MaxTagLength:         100,

		// Query constraints
		MaxNLQueryLength:    300,
		MaxAgentQueryLength: 4096,

		// Search behavior
		ResultCap:       5,
		SummaryMaxRunes: 200,
		AmbiguityMargin: 0.15,
		SuggestionLimit: 3,

		// Agent behavior
		DefaultMaxTokens: 1024,
		MinMaxTokens:     100,
		MaxMaxTokens:     8192,
		CitationLimit:    3,
		AgentTimeout:     5 * time.Second,

		// Dataset shape
		DefaultResourceCount: 100,
		FullDatasetCount:     500,
		MinPerTagAtFullCount: 40,
		DatasetSeed:          42,

		// Runtime probing
		ProbeTimeout: 5 * time.Second,
	}
}

// FullDatasetDomainConfig returns the configuration for the full synthetic
// dataset used by integrity checks and load-style testing.
func FullDatasetDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.DefaultResourceCount = config.FullDatasetCount
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "full-dataset":
		return FullDatasetDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.ResultCap <= 0 {
		return fmt.Errorf("result cap must be positive, got %d", c.ResultCap)
	}
	if c.MinMaxTokens <= 0 || c.MaxMaxTokens < c.MinMaxTokens {
		return fmt.Errorf("invalid token bounds [%d, %d]", c.MinMaxTokens, c.MaxMaxTokens)
	}
	if c.DefaultMaxTokens < c.MinMaxTokens || c.DefaultMaxTokens > c.MaxMaxTokens {
		return fmt.Errorf("default max tokens %d outside [%d, %d]", c.DefaultMaxTokens, c.MinMaxTokens, c.MaxMaxTokens)
	}
	if c.AmbiguityMargin < 0 || c.AmbiguityMargin > 1 {
		return fmt.Errorf("ambiguity margin must be in [0, 1], got %f", c.AmbiguityMargin)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}

// InVocabulary reports whether the tag belongs to the closed vocabulary.
func InVocabulary(tag string) bool {
	for _, t := range TagVocabulary {
		if t == tag {
			return true
		}
	}
	return false
}
