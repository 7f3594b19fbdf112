// Package extensions provides the hook registry through which observers
// (metrics, audit) attach to query execution, cache activity, and agent
// sessions without the core paths knowing about them.
package extensions

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// HookPoint names a place in the application where observers can attach.
type HookPoint string

const (
	// Query bus.
	HookBeforeQueryExecute HookPoint = "before_query_execute"
	HookAfterQueryExecute  HookPoint = "after_query_execute"
	HookQueryFailed        HookPoint = "query_failed"

	// Agent sessions.
	HookSessionStarted   HookPoint = "agent_session_started"
	HookToolInvoked      HookPoint = "agent_tool_invoked"
	HookSessionCompleted HookPoint = "agent_session_completed"

	// Cache activity.
	HookCacheMiss HookPoint = "cache_miss"
	HookCacheHit  HookPoint = "cache_hit"
)

// Hook observes one event at a hook point.
type Hook func(ctx context.Context, data interface{}) error

// HookManager holds the registered observers per hook point. Registration
// order is execution order.
type HookManager struct {
	mu    sync.RWMutex
	hooks map[HookPoint][]Hook
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: make(map[HookPoint][]Hook)}
}

// Register attaches a hook to a point.
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[point] = append(m.hooks[point], hook)
}

// Execute runs every hook registered at point, in registration order. A
// failing hook does not prevent later hooks from running; observers are
// independent of each other. The joined failures are returned for callers
// that want to log them.
func (m *HookManager) Execute(ctx context.Context, point HookPoint, data interface{}) error {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	var errs []error
	for i, hook := range hooks {
		if err := hook(ctx, data); err != nil {
			errs = append(errs, fmt.Errorf("hook %d at %s: %w", i, point, err))
		}
	}
	return errors.Join(errs...)
}
