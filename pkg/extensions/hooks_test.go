package extensions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookManager_ExecutesInRegistrationOrder(t *testing.T) {
	// Arrange
	m := NewHookManager()
	var order []string
	record := func(name string) Hook {
		return func(ctx context.Context, data interface{}) error {
			order = append(order, name)
			return nil
		}
	}
	m.Register(HookCacheHit, record("first"))
	m.Register(HookCacheHit, record("second"))

	// Act
	err := m.Execute(context.Background(), HookCacheHit, "nl:query")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestHookManager_FailingHookDoesNotStopOthers(t *testing.T) {
	// Arrange
	m := NewHookManager()
	var ran bool
	m.Register(HookSessionCompleted, func(ctx context.Context, data interface{}) error {
		return errors.New("sink offline")
	})
	m.Register(HookSessionCompleted, func(ctx context.Context, data interface{}) error {
		ran = true
		return nil
	})

	// Act
	err := m.Execute(context.Background(), HookSessionCompleted, nil)

	// Assert
	assert.True(t, ran)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink offline")
	assert.Contains(t, err.Error(), string(HookSessionCompleted))
}

func TestHookManager_UnknownPointIsANoOp(t *testing.T) {
	m := NewHookManager()

	assert.NoError(t, m.Execute(context.Background(), HookQueryFailed, nil))
}

func TestHookManager_PointsAreIsolated(t *testing.T) {
	m := NewHookManager()
	var hits int
	m.Register(HookCacheMiss, func(ctx context.Context, data interface{}) error {
		hits++
		return nil
	})

	require.NoError(t, m.Execute(context.Background(), HookCacheHit, nil))
	require.NoError(t, m.Execute(context.Background(), HookCacheMiss, nil))

	assert.Equal(t, 1, hits)
}
