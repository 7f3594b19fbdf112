package queries

import (
	"errors"
	"fmt"
	"strings"
)

// NLSearchQuery represents a natural language search over the catalog.
// Cap bounds the number of returned items; 0 means the handler default.
type NLSearchQuery struct {
	Query string
	Cap   int
}

// Validate validates the NLSearchQuery
func (q NLSearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.New("query is required")
	}
	if q.Cap < 0 {
		return errors.New("cap must not be negative")
	}
	return nil
}

// CacheKey returns a stable key for caching equivalent queries: the query
// text is lowercased and inner whitespace collapsed so trivially different
// phrasings share an entry
func (q NLSearchQuery) CacheKey() string {
	normalized := strings.ToLower(strings.Join(strings.Fields(q.Query), " "))
	return fmt.Sprintf("nl_search:%s:%d", normalized, q.Cap)
}

// NLSearchItem is one verified search hit with its internal deep link
type NLSearchItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Tag     string `json:"tag"`
	Link    string `json:"link"`
}

// NLSearchResult represents the outcome of a natural language search.
// Message carries guidance for empty or ambiguous results; CandidateTags
// lists suggested refinements when the query was ambiguous or unmatched.
type NLSearchResult struct {
	Results       []NLSearchItem `json:"results"`
	Count         int            `json:"count"`
	Query         string         `json:"query"`
	MatchedTag    string         `json:"matched_tag,omitempty"`
	CandidateTags []string       `json:"candidate_tags,omitempty"`
	Reasoning     string         `json:"reasoning,omitempty"`
	Message       string         `json:"message,omitempty"`
}
