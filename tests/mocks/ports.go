// Package mocks provides in-memory mock implementations of the application
// ports for testing. Each mock supports method-level error injection so
// failure paths can be exercised without a real backend.
package mocks

import (
	"context"
	"sync"
	"time"

	"smartfetch/application/ports"
	"smartfetch/domain/core/entities"
	"smartfetch/domain/core/valueobjects"
	"smartfetch/domain/events"
	apperrors "smartfetch/pkg/errors"
)

// MockResourceRepository is an in-memory ports.ResourceRepository
type MockResourceRepository struct {
	mu sync.RWMutex

	resources []*entities.Resource
	byID      map[string]*entities.Resource
	byTag     map[string][]*entities.Resource
	tagOrder  []string

	shouldFailOn map[string]error
}

// NewMockResourceRepository creates a mock repository over the given resources
func NewMockResourceRepository(resources ...*entities.Resource) *MockResourceRepository {
	m := &MockResourceRepository{
		resources:    make([]*entities.Resource, 0, len(resources)),
		byID:         make(map[string]*entities.Resource),
		byTag:        make(map[string][]*entities.Resource),
		shouldFailOn: make(map[string]error),
	}
	for _, r := range resources {
		m.resources = append(m.resources, r)
		m.byID[r.ID().String()] = r
		tag := r.Tag().String()
		if _, seen := m.byTag[tag]; !seen {
			m.tagOrder = append(m.tagOrder, tag)
		}
		m.byTag[tag] = append(m.byTag[tag], r)
	}
	return m
}

// SetError configures the mock to return an error for a specific method
func (m *MockResourceRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

func (m *MockResourceRepository) checkError(method string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shouldFailOn[method]
}

// GetByID retrieves a resource by ID, with a typed not-found error on a miss
func (m *MockResourceRepository) GetByID(ctx context.Context, id valueobjects.ResourceID) (*entities.Resource, error) {
	if err := m.checkError("GetByID"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.byID[id.String()]; ok {
		return r, nil
	}
	return nil, apperrors.ErrResourceNotFound.Clone().WithDetail("id", id.String())
}

// GetByTag retrieves resources carrying the exact tag
func (m *MockResourceRepository) GetByTag(ctx context.Context, tag string) ([]*entities.Resource, error) {
	if err := m.checkError("GetByTag"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.Resource, 0, len(m.byTag[tag]))
	out = append(out, m.byTag[tag]...)
	return out, nil
}

// GetByTags retrieves resources for several tags, concatenated in tag order
func (m *MockResourceRepository) GetByTags(ctx context.Context, tags []string) ([]*entities.Resource, error) {
	if err := m.checkError("GetByTags"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entities.Resource
	for _, tag := range tags {
		out = append(out, m.byTag[tag]...)
	}
	if out == nil {
		out = []*entities.Resource{}
	}
	return out, nil
}

// ListAll retrieves every resource in insertion order
func (m *MockResourceRepository) ListAll(ctx context.Context) ([]*entities.Resource, error) {
	if err := m.checkError("ListAll"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.Resource, len(m.resources))
	copy(out, m.resources)
	return out, nil
}

// UniqueTags returns each distinct tag once, in first-seen order
func (m *MockResourceRepository) UniqueTags(ctx context.Context) ([]string, error) {
	if err := m.checkError("UniqueTags"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.tagOrder))
	copy(out, m.tagOrder)
	return out, nil
}

// HasResource reports whether a resource with the given ID exists
func (m *MockResourceRepository) HasResource(ctx context.Context, id valueobjects.ResourceID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id.String()]
	return ok
}

// Count returns the number of stored resources
func (m *MockResourceRepository) Count(ctx context.Context) (int, error) {
	if err := m.checkError("Count"); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources), nil
}

// MockTagMatcher is a configurable ports.TagMatcher
type MockTagMatcher struct {
	mu sync.Mutex

	extractions map[string]ports.TagExtraction
	fallback    ports.TagExtraction
	err         error

	Queries []string
}

// NewMockTagMatcher creates a matcher that extracts nothing by default
func NewMockTagMatcher() *MockTagMatcher {
	return &MockTagMatcher{
		extractions: make(map[string]ports.TagExtraction),
	}
}

// SetExtraction configures the result for an exact query
func (m *MockTagMatcher) SetExtraction(query string, extraction ports.TagExtraction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions[query] = extraction
}

// SetFallback configures the result for queries without an exact match
func (m *MockTagMatcher) SetFallback(extraction ports.TagExtraction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = extraction
}

// SetError makes every extraction fail
func (m *MockTagMatcher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Extract returns the configured extraction for the query
func (m *MockTagMatcher) Extract(ctx context.Context, query string) (ports.TagExtraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.err != nil {
		return ports.TagExtraction{}, m.err
	}
	if extraction, ok := m.extractions[query]; ok {
		return extraction, nil
	}
	return m.fallback, nil
}

// MockAnswerGenerator is a configurable ports.AnswerGenerator
type MockAnswerGenerator struct {
	mu sync.Mutex

	Answer string
	Err    error
	Delay  time.Duration

	Requests []ports.GenerateRequest
}

// NewMockAnswerGenerator creates a generator returning a fixed answer
func NewMockAnswerGenerator(answer string) *MockAnswerGenerator {
	return &MockAnswerGenerator{Answer: answer}
}

// GenerateAnswer returns the configured answer after the configured delay
func (m *MockAnswerGenerator) GenerateAnswer(ctx context.Context, req ports.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	delay, err, answer := m.Delay, m.Err, m.Answer
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

// MockLinkVerifier is a configurable ports.LinkVerifier
type MockLinkVerifier struct {
	mu sync.Mutex

	defaultValid bool
	verdicts     map[string]bool
	errs         map[string]error

	Checked []string
}

// NewMockLinkVerifier creates a verifier with a default verdict
func NewMockLinkVerifier(defaultValid bool) *MockLinkVerifier {
	return &MockLinkVerifier{
		defaultValid: defaultValid,
		verdicts:     make(map[string]bool),
		errs:         make(map[string]error),
	}
}

// SetVerdict pins the verdict for one link
func (m *MockLinkVerifier) SetVerdict(link string, valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[link] = valid
}

// SetVerifyError makes verification of one link return an error
func (m *MockLinkVerifier) SetVerifyError(link string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[link] = err
}

// Verify returns the configured verdict for the link
func (m *MockLinkVerifier) Verify(ctx context.Context, link valueobjects.Link) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := link.String()
	m.Checked = append(m.Checked, key)
	if err, ok := m.errs[key]; ok {
		return false, err
	}
	if verdict, ok := m.verdicts[key]; ok {
		return verdict, nil
	}
	return m.defaultValid, nil
}

// MockAuditLog records audit events in memory
type MockAuditLog struct {
	mu sync.Mutex

	Starts []*events.SessionStarted
	Tools  []*events.ToolInvoked
	Ends   []*events.SessionCompleted

	err       error
	panicking bool
}

// NewMockAuditLog creates an empty audit log
func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{}
}

// SetError makes every write fail with err
func (m *MockAuditLog) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetPanic makes every write panic
func (m *MockAuditLog) SetPanic(panicking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicking = panicking
}

// RecordSessionStart appends a session_start entry
func (m *MockAuditLog) RecordSessionStart(ctx context.Context, event *events.SessionStarted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicking {
		panic("audit log unavailable")
	}
	if m.err != nil {
		return m.err
	}
	m.Starts = append(m.Starts, event)
	return nil
}

// RecordToolCall appends a tool invocation entry
func (m *MockAuditLog) RecordToolCall(ctx context.Context, event *events.ToolInvoked) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicking {
		panic("audit log unavailable")
	}
	if m.err != nil {
		return m.err
	}
	m.Tools = append(m.Tools, event)
	return nil
}

// RecordSessionEnd appends a session_end entry
func (m *MockAuditLog) RecordSessionEnd(ctx context.Context, event *events.SessionCompleted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicking {
		panic("audit log unavailable")
	}
	if m.err != nil {
		return m.err
	}
	m.Ends = append(m.Ends, event)
	return nil
}

// LastEnd returns the most recent session_end entry, or nil
func (m *MockAuditLog) LastEnd() *events.SessionCompleted {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Ends) == 0 {
		return nil
	}
	return m.Ends[len(m.Ends)-1]
}

// MockCache is an in-memory ports.Cache that ignores TTLs
type MockCache struct {
	mu sync.Mutex

	data map[string]interface{}

	Hits    int
	Misses  int
	LastTTL int
}

// NewMockCache creates an empty cache
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]interface{})}
}

// Get retrieves a value from the cache
func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if ok {
		m.Hits++
	} else {
		m.Misses++
	}
	return value, ok
}

// Set stores a value in the cache
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.LastTTL = ttl
	return nil
}

// Delete removes a value from the cache
func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Clear removes all values from the cache
func (m *MockCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]interface{})
	return nil
}
