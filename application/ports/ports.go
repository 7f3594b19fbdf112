package ports

import (
	"context"

	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
	"smartfetch/domain/events"
)

// ResourceRepository defines the read-side interface for the resource catalog
// This is a port in hexagonal architecture - the application doesn't know about the implementation
type ResourceRepository interface {
	// GetByID retrieves a resource by its ID; a miss yields a typed not-found error
	GetByID(ctx context.Context, id valueobjects.ResourceID) (*entities.Resource, error)

	// GetByTag retrieves all resources carrying the exact tag, in catalog order
	GetByTag(ctx context.Context, tag string) ([]*entities.Resource, error)

	// GetByTags retrieves resources for several tags, concatenated in tag order
	GetByTags(ctx context.Context, tags []string) ([]*entities.Resource, error)

	// ListAll retrieves every resource in stable catalog order
	ListAll(ctx context.Context) ([]*entities.Resource, error)

	// UniqueTags returns each distinct tag once, in first-seen order
	UniqueTags(ctx context.Context) ([]string, error)

	// HasResource reports whether a resource with the given ID exists
	HasResource(ctx context.Context, id valueobjects.ResourceID) bool

	// Count returns the number of resources in the catalog
	Count(ctx context.Context) (int, error)
}

// ExtractionSource identifies which strategy produced a tag extraction
type ExtractionSource string

const (
	// ExtractionSourceLLM marks extractions produced by the language model
	ExtractionSourceLLM ExtractionSource = "llm"

	// ExtractionSourceKeyword marks extractions produced by the keyword fallback
	ExtractionSourceKeyword ExtractionSource = "keyword"
)

// TagExtraction is the outcome of mapping a natural language query onto the
// tag vocabulary. Tags are ordered by confidence; Confidence scores the top
// tag; Ambiguous is set when several tags scored too close to call.
type TagExtraction struct {
	Tags       []string
	Confidence float64
	Ambiguous  bool
	Reasoning  string
	Source     ExtractionSource
}

// IsEmpty reports whether no tag matched the query
func (e TagExtraction) IsEmpty() bool {
	return len(e.Tags) == 0
}

// TopTag returns the highest-confidence tag, or "" when empty
func (e TagExtraction) TopTag() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0]
}

// TagMatcher defines the interface for natural language tag extraction
type TagMatcher interface {
	// Extract maps a query onto vocabulary tags; implementations degrade to
	// keyword matching internally, so an error means no strategy could run
	Extract(ctx context.Context, query string) (TagExtraction, error)
}

// GenerateRequest carries the inputs for answer synthesis
type GenerateRequest struct {
	Query     string
	Evidence  []*entities.Resource
	MaxTokens int
}

// AnswerGenerator defines the interface for LLM-backed answer synthesis
type AnswerGenerator interface {
	// GenerateAnswer synthesizes a grounded answer from the evidence resources
	GenerateAnswer(ctx context.Context, req GenerateRequest) (string, error)
}

// LinkVerifier defines the interface for deterministic deep-link verification
type LinkVerifier interface {
	// Verify reports whether the link is a well-formed internal deep link that
	// resolves to a stored resource; the error return is reserved for
	// infrastructure faults, a malformed or dangling link is (false, nil)
	Verify(ctx context.Context, link valueobjects.Link) (bool, error)
}

// AuditLog defines the interface for the append-only agent session trail
type AuditLog interface {
	// RecordSessionStart appends a session_start entry
	RecordSessionStart(ctx context.Context, event *events.SessionStarted) error

	// RecordToolCall appends a tool invocation entry
	RecordToolCall(ctx context.Context, event *events.ToolInvoked) error

	// RecordSessionEnd appends a session_end entry
	RecordSessionEnd(ctx context.Context, event *events.SessionCompleted) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
