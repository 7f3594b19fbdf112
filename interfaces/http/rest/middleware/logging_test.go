package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, status int) observer.LoggedEntry {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("payload"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/search?tag=home", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	return logs.All()[0]
}

func TestLogger_RecordsRequestFields(t *testing.T) {
	entry := loggedRequest(t, http.StatusOK)

	assert.Equal(t, "http request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/search", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.EqualValues(t, len("payload"), fields["bytes"])
	assert.Contains(t, fields, "duration")
	assert.Contains(t, fields, "remote_addr")
}

func TestLogger_TiersLevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success stays info", http.StatusOK, zapcore.InfoLevel},
		{"client error warns", http.StatusBadRequest, zapcore.WarnLevel},
		{"server error errors", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := loggedRequest(t, tt.status)

			assert.Equal(t, tt.level, entry.Level)
		})
	}
}
