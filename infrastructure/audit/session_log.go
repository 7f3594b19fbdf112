// Package audit persists the agent session trail as JSON lines, one entry
// per line, append-only.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartfetch/domain/events"
)

const (
	eventSessionStart = "session_start"
	eventSessionEnd   = "session_end"
)

// Entry is one line of the session trail. Exactly one of three shapes is
// populated: a session opening (Event + Query), a tool call (Tool + Params +
// ResultSummary), or a session close (Event + Status + Answer).
type Entry struct {
	Timestamp     time.Time         `json:"timestamp"`
	SessionID     string            `json:"agent_session_id"`
	Event         string            `json:"event,omitempty"`
	Query         string            `json:"query,omitempty"`
	Tool          string            `json:"tool,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
	ResultSummary string            `json:"result_summary,omitempty"`
	Status        string            `json:"status,omitempty"`
	Answer        string            `json:"answer,omitempty"`
}

// SessionLog is a file-backed ports.AuditLog. Writes are serialized so
// concurrent sessions never interleave partial lines. The log deliberately
// ignores context cancellation: a timed-out session still gets its closing
// entry.
type SessionLog struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	logger *zap.Logger
}

// NewSessionLog opens (or creates) the trail file at path, creating parent
// directories as needed
func NewSessionLog(path string, logger *zap.Logger) (*SessionLog, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}

	return &SessionLog{file: file, path: path, logger: logger}, nil
}

// RecordSessionStart appends a session_start entry
func (l *SessionLog) RecordSessionStart(ctx context.Context, event *events.SessionStarted) error {
	return l.append(Entry{
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		Event:     eventSessionStart,
		Query:     event.Query,
	})
}

// RecordToolCall appends a tool invocation entry
func (l *SessionLog) RecordToolCall(ctx context.Context, event *events.ToolInvoked) error {
	return l.append(Entry{
		Timestamp:     event.Timestamp,
		SessionID:     event.SessionID,
		Tool:          event.Tool,
		Params:        event.Params,
		ResultSummary: event.ResultSummary,
	})
}

// RecordSessionEnd appends a session_end entry
func (l *SessionLog) RecordSessionEnd(ctx context.Context, event *events.SessionCompleted) error {
	return l.append(Entry{
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		Event:     eventSessionEnd,
		Status:    string(event.Status),
		Answer:    event.Answer,
	})
}

func (l *SessionLog) append(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("appending to audit log: %w", err)
	}
	return nil
}

// ReadAll parses every entry in the trail, oldest first. Lines that fail to
// parse are skipped with a warning so one corrupt line cannot hide the rest
// of the trail.
func (l *SessionLog) ReadAll() ([]Entry, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log for read: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.logger.Warn("skipping malformed audit line", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// ReadSession returns the trail of one session, oldest first
func (l *SessionLog) ReadSession(sessionID string) ([]Entry, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, entry := range all {
		if entry.SessionID == sessionID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Close flushes and closes the trail file
func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
