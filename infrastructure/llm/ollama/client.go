// Package ollama talks to a local Ollama runtime over its HTTP API and CLI.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tagsPath     = "/api/tags"
	generatePath = "/api/generate"

	// Startup checks are bounded independently of the caller's deadline so a
	// hung runtime cannot stall boot.
	reachabilityTimeout = 5 * time.Second
	processListTimeout  = 5 * time.Second
)

// Recorder observes runtime call outcomes for metrics
type Recorder interface {
	RecordLLMRequest(operation string, err error, duration time.Duration)
}

// Client is an Ollama runtime client. Reachability and generation go over
// HTTP; enumerating running models shells out to the ollama CLI, which is the
// only interface that reports loaded (not merely installed) models.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	listOutput func(ctx context.Context) ([]byte, error)
	recorder   Recorder
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithProcessLister replaces the process-listing command, for tests
func WithProcessLister(fn func(ctx context.Context) ([]byte, error)) Option {
	return func(c *Client) {
		c.listOutput = fn
	}
}

// WithRecorder attaches a metrics recorder to generation calls
func WithRecorder(recorder Recorder) Option {
	return func(c *Client) {
		c.recorder = recorder
	}
}

// NewClient creates a runtime client for the given base URL and model
func NewClient(baseURL, model string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
		logger:     logger,
	}
	c.listOutput = c.runProcessList
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the runtime base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Reachable reports whether the runtime answers its tags endpoint. Any
// transport failure or non-200 status counts as unreachable.
func (c *Client) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, reachabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tagsPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("runtime reachability check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// RunningModels enumerates the models currently loaded by the runtime.
// A failure to run or parse the listing is an error distinct from an empty
// listing, which is a valid "nothing loaded" answer.
func (c *Client) RunningModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, processListTimeout)
	defer cancel()

	out, err := c.listOutput(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing running models: %w", err)
	}
	return parseProcessTable(out)
}

func (c *Client) runProcessList(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, "ollama", "ps").Output()
}

// parseProcessTable extracts model names from `ollama ps` output. The first
// line is a column header; each following line starts with a model name.
func parseProcessTable(out []byte) ([]string, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return nil, errors.New("empty process listing")
	}

	lines := strings.Split(text, "\n")
	models := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		models = append(models, fields[0])
	}
	return models, nil
}

// BaseModelName strips the size/variant suffix from a model name:
// "gpt-oss:20b" becomes "gpt-oss". Comparison is case-insensitive.
func BaseModelName(model string) string {
	return strings.ToLower(strings.SplitN(model, ":", 2)[0])
}

// GenerateOptions tune a single generation call
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	JSONFormat  bool
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs a single non-streaming completion and returns the response
// text. The caller's context bounds the call.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt, opts)
	if c.recorder != nil {
		c.recorder.RecordLLMRequest("generate", err, time.Since(start))
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}
	if opts.JSONFormat {
		payload.Format = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling runtime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("runtime returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}

	return decoded.Response, nil
}
