// Package integration exercises the assembled service end to end: real
// catalog, real query bus, real HTTP surface, with only the model runtime
// replaced by a local fake speaking the Ollama wire protocol.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartfetch/application/queries"
	"smartfetch/infrastructure/audit"
	"smartfetch/infrastructure/config"
	"smartfetch/infrastructure/di"
	"smartfetch/infrastructure/llm/ollama"
	"smartfetch/interfaces/http/rest"
	"smartfetch/pkg/common"
)

// fakeRuntime speaks just enough of the Ollama HTTP API for the client:
// /api/tags for reachability and /api/generate for completions. Tag verdicts
// and answers are configurable per test.
type fakeRuntime struct {
	server *httptest.Server

	mu            sync.Mutex
	verdict       string
	answer        string
	generateCalls int
}

func newFakeRuntime(t *testing.T) *fakeRuntime {
	t.Helper()

	f := &fakeRuntime{
		verdict: `{"tag": "home", "confidence": 0.95, "alternates": [], "reasoning": "household intent"}`,
		answer:  "Based on the catalog, the listed picks cover this query.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[]}`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
			Format string `json:"format"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.generateCalls++
		response := f.answer
		if req.Format == "json" {
			response = f.verdict
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"response": response, "done": true})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRuntime) setVerdict(tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdict = fmt.Sprintf(`{"tag": %q, "confidence": 0.95, "alternates": [], "reasoning": "matched intent"}`, tag)
}

func (f *fakeRuntime) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

// processList mimics `ollama ps` with the configured model loaded
func (f *fakeRuntime) processList(ctx context.Context) ([]byte, error) {
	return []byte("NAME          ID      SIZE    PROCESSOR    UNTIL\ngpt-oss:20b   9a8b    13 GB   100% GPU     4 minutes from now"), nil
}

type harness struct {
	api     http.Handler
	logPath string
}

// newHarness assembles the service exactly the way the wire injector does,
// swapping in the fake runtime's URL and a stubbed process lister.
func newHarness(t *testing.T, runtime *fakeRuntime) *harness {
	t.Helper()

	logger := zap.NewNop()
	logPath := filepath.Join(t.TempDir(), "agent_actions.jsonl")

	cfg := &config.Config{
		Environment:        "development",
		Port:               8000,
		LogLevel:           "info",
		OllamaHost:         runtime.server.URL,
		OllamaModel:        "gpt-oss:20b",
		ResourceCount:      200,
		DatasetSeed:        42,
		NLResultCap:        5,
		AgentTimeoutSec:    5,
		CacheProvider:      "memory",
		CacheTTLSeconds:    300,
		RateLimitPerMinute: 10000,
		EnableMetrics:      true,
		CORSAllowedOrigins: "*",
		AgentLogPath:       logPath,
	}

	ctx := context.Background()
	domainCfg := di.ProvideDomainConfig(cfg)
	catalog, err := di.ProvideCatalog(domainCfg, logger)
	require.NoError(t, err)
	repo := di.ProvideRepository(catalog, logger)
	metrics := di.ProvideMetrics()
	hooks := di.ProvideHookManager(metrics)

	client := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel, logger,
		ollama.WithRecorder(metrics),
		ollama.WithProcessLister(runtime.processList),
	)
	snapshot := di.ProvideSnapshot(ctx, client, catalog, metrics, logger)

	matcher := di.ProvideTagMatcher(client, domainCfg, logger)
	answerer := di.ProvideAnswerGenerator(client, logger)
	verifier := di.ProvideLinkVerifier(repo, logger)
	filter := di.ProvideValidationFilter(verifier, logger)

	auditLog, err := di.ProvideAuditLog(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if closer, ok := auditLog.(io.Closer); ok {
			closer.Close()
		}
	})

	agentService := di.ProvideAgentService(matcher, repo, answerer, filter, auditLog, hooks, domainCfg, logger)

	cacheBackend, err := di.ProvideCache(ctx, cfg, logger)
	require.NoError(t, err)
	limiter := di.ProvideRateLimiter(cfg)

	queryBus, err := di.ProvideQueryBus(repo, matcher, verifier, cacheBackend, metrics, hooks, domainCfg, cfg, logger)
	require.NoError(t, err)

	router := rest.NewRouter(cfg, domainCfg, queryBus, agentService, snapshot, metrics, limiter, logger)
	return &harness{api: router.Setup(), logPath: logPath}
}

func (h *harness) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (h *harness) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.api.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) *common.APIResponse {
	t.Helper()

	var resp struct {
		Success bool              `json:"success"`
		Data    json.RawMessage   `json:"data"`
		Error   *common.ErrorInfo `json:"error"`
		Meta    *common.MetaInfo  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if v != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return &common.APIResponse{Success: resp.Success, Error: resp.Error, Meta: resp.Meta}
}

// listResources pulls the full catalog through the API
func (h *harness) listResources(t *testing.T) []queries.ResourceDTO {
	t.Helper()

	rec := h.get(t, "/resources")
	require.Equal(t, http.StatusOK, rec.Code)

	var data queries.ListResourcesResult
	decodeData(t, rec, &data)
	require.NotEmpty(t, data.Resources)
	return data.Resources
}

func TestAPI_HealthReflectsStartupProbe(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))

	rec := h.get(t, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["ollama"])
	assert.Equal(t, float64(200), body["resources_loaded"])
}

func TestAPI_UnreachableRuntimeComesUpUnhealthy(t *testing.T) {
	runtime := newFakeRuntime(t)
	runtime.server.Close()
	h := newHarness(t, runtime)

	rec := h.get(t, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// LLM-backed endpoints are gated on the snapshot
	rec = h.get(t, "/nl/search?q=anything+for+my+house")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeData(t, rec, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)

	// The catalog endpoints keep serving
	rec = h.get(t, "/resources")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_ResourceRoundTrip(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))
	resources := h.listResources(t)
	assert.Len(t, resources, 200)

	// Fetch one by id
	rec := h.get(t, "/resources/"+resources[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var data queries.GetResourceResult
	resp := decodeData(t, rec, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, resources[0].ID, data.Resource.ID)
	assert.Equal(t, resources[0].Tag, data.Resource.Tag)

	// Well-formed but absent id
	rec = h.get(t, "/resources/00000000-0000-4000-8000-000000000000")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp = decodeData(t, rec, nil)
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)

	// Malformed id
	rec = h.get(t, "/resources/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeData(t, rec, nil)
	assert.Equal(t, "INVALID_UUID", resp.Error.Code)
}

func TestAPI_ListResourcesPagination(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))

	rec := h.get(t, "/resources?limit=10&offset=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var data queries.ListResourcesResult
	resp := decodeData(t, rec, &data)
	assert.Len(t, data.Resources, 10)
	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, 200, resp.Meta.Pagination.Total)
	assert.Equal(t, 3, resp.Meta.Pagination.Page)
	assert.Equal(t, 20, resp.Meta.Pagination.TotalPages)
}

func TestAPI_SearchByTag(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))
	tag := h.listResources(t)[0].Tag

	rec := h.get(t, "/search?tag="+tag)
	require.Equal(t, http.StatusOK, rec.Code)

	var data queries.SearchByTagResult
	decodeData(t, rec, &data)
	assert.Equal(t, tag, data.Tag)
	require.NotZero(t, data.Count)
	for _, r := range data.Resources {
		assert.Equal(t, tag, r.Tag)
	}

	// Unknown tags are an empty result, not an error
	rec = h.get(t, "/search?tag=galaxy")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &data)
	assert.Zero(t, data.Count)

	// Missing tag is a 400
	rec = h.get(t, "/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.Equal(t, "MISSING_TAG", resp.Error.Code)
}

func TestAPI_NLSearchUsesModelVerdictAndCaches(t *testing.T) {
	runtime := newFakeRuntime(t)
	h := newHarness(t, runtime)

	tag := h.listResources(t)[0].Tag
	runtime.setVerdict(tag)
	before := runtime.calls()

	rec := h.get(t, "/nl/search?q=things+in+this+area")
	require.Equal(t, http.StatusOK, rec.Code)

	var data queries.NLSearchResult
	decodeData(t, rec, &data)
	assert.Equal(t, tag, data.MatchedTag)
	require.NotZero(t, data.Count)
	assert.LessOrEqual(t, data.Count, 5)
	assert.Equal(t, runtime.calls(), before+1)

	// The identical query is served from cache without another model call
	rec = h.get(t, "/nl/search?q=things+in+this+area")
	require.Equal(t, http.StatusOK, rec.Code)

	var cached queries.NLSearchResult
	decodeData(t, rec, &cached)
	assert.Equal(t, data.MatchedTag, cached.MatchedTag)
	assert.Equal(t, data.Count, cached.Count)
	assert.Equal(t, before+1, runtime.calls())
}

func TestAPI_NLSearchValidation(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))

	rec := h.get(t, "/nl/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.Equal(t, "MISSING_QUERY", resp.Error.Code)

	rec = h.get(t, "/nl/search?q="+strings.Repeat("a", 301))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeData(t, rec, nil)
	assert.Equal(t, "QUERY_TOO_LONG", resp.Error.Code)
}

func TestAPI_AgentSessionWritesAuditTrail(t *testing.T) {
	runtime := newFakeRuntime(t)
	h := newHarness(t, runtime)

	tag := h.listResources(t)[0].Tag
	runtime.setVerdict(tag)

	rec := h.postJSON(t, "/experimental/agent",
		`{"query":"what should I look at for this?","include_sources":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
		Sources   []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Link string `json:"link"`
		} `json:"sources"`
	}
	resp := decodeData(t, rec, &data)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Meta.Experimental)

	assert.NotEmpty(t, data.SessionID)
	assert.NotEmpty(t, data.Answer)
	require.NotEmpty(t, data.Sources)
	assert.LessOrEqual(t, len(data.Sources), 3)
	for _, source := range data.Sources {
		assert.NotEmpty(t, source.ID)
		assert.NotEmpty(t, source.Link)
	}

	// The session trail is on disk: start, tool calls, successful end
	raw, err := os.ReadFile(h.logPath)
	require.NoError(t, err)

	var entries []audit.Entry
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var entry audit.Entry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry.SessionID == data.SessionID {
			entries = append(entries, entry)
		}
	}
	require.GreaterOrEqual(t, len(entries), 3)
	assert.Equal(t, "session_start", entries[0].Event)
	assert.Equal(t, "what should I look at for this?", entries[0].Query)

	tools := make([]string, 0, 2)
	for _, entry := range entries[1 : len(entries)-1] {
		tools = append(tools, entry.Tool)
	}
	assert.Contains(t, tools, "search_resources")
	assert.Contains(t, tools, "validate_resource")

	last := entries[len(entries)-1]
	assert.Equal(t, "session_end", last.Event)
	assert.Equal(t, "success", last.Status)
	assert.Equal(t, data.Answer, last.Answer)
}

func TestAPI_AgentValidation(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))

	rec := h.postJSON(t, "/experimental/agent", `{"max_tokens":1024}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	rec = h.postJSON(t, "/experimental/agent", `{"query":"q","max_tokens":50}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeData(t, rec, nil)
	assert.Equal(t, "INVALID_MAX_TOKENS", resp.Error.Code)
}

func TestAPI_MetricsEndpointExposesCounters(t *testing.T) {
	h := newHarness(t, newFakeRuntime(t))

	// Drive at least one labeled request through the router first
	h.get(t, "/resources")

	rec := h.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smartfetch_http_requests_total")
	assert.Contains(t, rec.Body.String(), "smartfetch_resources_loaded")
}
