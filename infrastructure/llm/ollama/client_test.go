package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const psTable = `NAME           ID              SIZE     PROCESSOR    UNTIL
gpt-oss:20b    aabbccddeeff    13 GB    100% GPU     4 minutes from now
llama3:8b      112233445566    4.7 GB   100% GPU     2 minutes from now
`

func TestClient_Reachable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "server error", status: http.StatusInternalServerError, want: false},
		{name: "not found", status: http.StatusNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/tags", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "gpt-oss:20b", zap.NewNop())

			assert.Equal(t, tt.want, client.Reachable(context.Background()))
		})
	}
}

func TestClient_Reachable_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "gpt-oss:20b", zap.NewNop())

	assert.False(t, client.Reachable(context.Background()))
}

func TestClient_RunningModels(t *testing.T) {
	client := NewClient("http://localhost:11434", "gpt-oss:20b", zap.NewNop(),
		WithProcessLister(func(ctx context.Context) ([]byte, error) {
			return []byte(psTable), nil
		}),
	)

	models, err := client.RunningModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-oss:20b", "llama3:8b"}, models)
}

func TestClient_RunningModels_HeaderOnly(t *testing.T) {
	// A successful listing with nothing loaded is not an error
	client := NewClient("http://localhost:11434", "gpt-oss:20b", zap.NewNop(),
		WithProcessLister(func(ctx context.Context) ([]byte, error) {
			return []byte("NAME    ID    SIZE    PROCESSOR    UNTIL\n"), nil
		}),
	)

	models, err := client.RunningModels(context.Background())

	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestClient_RunningModels_Failures(t *testing.T) {
	tests := []struct {
		name   string
		lister func(ctx context.Context) ([]byte, error)
	}{
		{
			name: "command failed",
			lister: func(ctx context.Context) ([]byte, error) {
				return nil, errors.New("exec: \"ollama\": executable file not found in $PATH")
			},
		},
		{
			name: "empty output",
			lister: func(ctx context.Context) ([]byte, error) {
				return []byte("   \n"), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("http://localhost:11434", "gpt-oss:20b", zap.NewNop(),
				WithProcessLister(tt.lister))

			_, err := client.RunningModels(context.Background())

			require.Error(t, err)
		})
	}
}

func TestBaseModelName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{model: "gpt-oss:20b", want: "gpt-oss"},
		{model: "llama3", want: "llama3"},
		{model: "GPT-OSS:20B", want: "gpt-oss"},
		{model: "deepseek-r1:7b-qwen-distill", want: "deepseek-r1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseModelName(tt.model))
	}
}

func TestClient_Generate(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(generateResponse{Response: "a concise answer", Done: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, "gpt-oss:20b", zap.NewNop())

	text, err := client.Generate(context.Background(), "say hello", GenerateOptions{
		Temperature: 0.2,
		MaxTokens:   256,
		JSONFormat:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, "a concise answer", text)
	assert.Equal(t, "gpt-oss:20b", captured.Model)
	assert.Equal(t, "say hello", captured.Prompt)
	assert.False(t, captured.Stream)
	assert.Equal(t, "json", captured.Format)
	assert.Equal(t, 0.2, captured.Options.Temperature)
	assert.Equal(t, 256, captured.Options.NumPredict)
}

func TestClient_Generate_RuntimeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gpt-oss:20b", zap.NewNop())

	_, err := client.Generate(context.Background(), "say hello", GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

type captureRecorder struct {
	operations []string
	errs       []error
}

func (r *captureRecorder) RecordLLMRequest(operation string, err error, duration time.Duration) {
	r.operations = append(r.operations, operation)
	r.errs = append(r.errs, err)
}

func TestClient_Generate_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	recorder := &captureRecorder{}
	client := NewClient(server.URL, "gpt-oss:20b", zap.NewNop(), WithRecorder(recorder))

	_, err := client.Generate(context.Background(), "say hello", GenerateOptions{})

	require.NoError(t, err)
	require.Equal(t, []string{"generate"}, recorder.operations)
	assert.NoError(t, recorder.errs[0])
}
