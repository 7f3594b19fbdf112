package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	querybus "smartfetch/application/queries/bus"
	"smartfetch/infrastructure/health"
	"smartfetch/pkg/common"
)

// envelope mirrors common.APIResponse with raw data for per-test decoding
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *common.ErrorInfo `json:"error"`
	Meta    *common.MetaInfo  `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func register(t *testing.T, bus *querybus.QueryBus, queryType querybus.Query, fn func(ctx context.Context, query querybus.Query) (interface{}, error)) {
	t.Helper()

	require.NoError(t, bus.Register(queryType, querybus.QueryHandlerFunc(fn)))
}

func healthySnapshot() health.Snapshot {
	return health.Snapshot{
		Status:          health.StatusHealthy,
		RuntimeStatus:   health.RuntimeConnected,
		Message:         "Ollama and model are ready",
		ModelName:       "gpt-oss:20b",
		ResourcesLoaded: 100,
	}
}

func unhealthySnapshot() health.Snapshot {
	return health.Snapshot{
		Status:          health.StatusUnhealthy,
		RuntimeStatus:   health.RuntimeDisconnected,
		Message:         "Ollama service is not reachable",
		ModelName:       "gpt-oss:20b",
		ResourcesLoaded: 100,
	}
}
