package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Catalog Events

// CatalogLoaded is raised after the catalog is built from the generated dataset
type CatalogLoaded struct {
	BaseEvent
	CatalogID     string `json:"catalog_id"`
	ResourceCount int    `json:"resource_count"`
	TagCount      int    `json:"tag_count"`
}

// NewCatalogLoaded creates a CatalogLoaded event
func NewCatalogLoaded(catalogID string, resourceCount, tagCount int, timestamp time.Time) CatalogLoaded {
	return CatalogLoaded{
		BaseEvent: BaseEvent{
			AggregateID: catalogID,
			EventType:   "catalog.loaded",
			Timestamp:   timestamp,
			Version:     1,
		},
		CatalogID:     catalogID,
		ResourceCount: resourceCount,
		TagCount:      tagCount,
	}
}

// Agent Session Events

// SessionStatus captures the terminal state of an agent session
type SessionStatus string

const (
	SessionSuccess    SessionStatus = "success"
	SessionNoEvidence SessionStatus = "no_evidence"
	SessionToolError  SessionStatus = "tool_error"
	SessionTimeout    SessionStatus = "timeout"
)

// SessionStarted is raised when an agent session begins
type SessionStarted struct {
	BaseEvent
	SessionID string `json:"agent_session_id"`
	Query     string `json:"query"`
}

// NewSessionStarted creates a SessionStarted event
func NewSessionStarted(sessionID, query string, timestamp time.Time) SessionStarted {
	return SessionStarted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "agent.session_started",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID: sessionID,
		Query:     query,
	}
}

// ToolInvoked is raised for every tool call an agent session makes
type ToolInvoked struct {
	BaseEvent
	SessionID     string            `json:"agent_session_id"`
	Tool          string            `json:"tool"`
	Params        map[string]string `json:"params"`
	ResultSummary string            `json:"result_summary"`
}

// NewToolInvoked creates a ToolInvoked event
func NewToolInvoked(sessionID, tool string, params map[string]string, resultSummary string, timestamp time.Time) ToolInvoked {
	if params == nil {
		params = map[string]string{}
	}
	return ToolInvoked{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "agent.tool_invoked",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID:     sessionID,
		Tool:          tool,
		Params:        params,
		ResultSummary: resultSummary,
	}
}

// SessionCompleted is raised when an agent session ends, whatever the outcome
type SessionCompleted struct {
	BaseEvent
	SessionID string        `json:"agent_session_id"`
	Status    SessionStatus `json:"status"`
	Answer    string        `json:"answer,omitempty"`
}

// NewSessionCompleted creates a SessionCompleted event
func NewSessionCompleted(sessionID string, status SessionStatus, answer string, timestamp time.Time) SessionCompleted {
	return SessionCompleted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "agent.session_completed",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID: sessionID,
		Status:    status,
		Answer:    answer,
	}
}

