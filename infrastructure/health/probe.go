// Package health computes the startup health snapshot. The probe runs
// exactly once before the server accepts requests; every /health response
// afterwards is a pure read of the snapshot with no re-verification.
package health

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartfetch/infrastructure/llm/ollama"
	apperrors "smartfetch/pkg/errors"
)

// Status is the overall service status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// RuntimeStatus is the LLM runtime sub-status
type RuntimeStatus string

const (
	RuntimeConnected       RuntimeStatus = "connected"
	RuntimeModelNotRunning RuntimeStatus = "model_not_running"
	RuntimeDisconnected    RuntimeStatus = "disconnected"
)

// RuntimeClient is the slice of the runtime client the probe needs
type RuntimeClient interface {
	Reachable(ctx context.Context) bool
	RunningModels(ctx context.Context) ([]string, error)
}

// Snapshot is the immutable result of the startup probe
type Snapshot struct {
	Status          Status        `json:"status"`
	RuntimeStatus   RuntimeStatus `json:"ollama"`
	Message         string        `json:"ollama_message"`
	ModelName       string        `json:"model_name"`
	ResourcesLoaded int           `json:"resources_loaded"`
}

// IsHealthy reports whether the runtime and model were both ready at startup
func (s Snapshot) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// LLMAvailable reports whether LLM-backed endpoints can be attempted.
// A degraded runtime still serves them; the keyword fallback carries the
// search path and generation errors surface per request.
func (s Snapshot) LLMAvailable() bool {
	return s.Status != StatusUnhealthy
}

// HTTPStatus maps the snapshot onto the /health response code
func (s Snapshot) HTTPStatus() int {
	if s.Status == StatusUnhealthy {
		return 503
	}
	return 200
}

// Probe checks the LLM runtime once at startup
type Probe struct {
	runtime RuntimeClient
	model   string
	logger  *zap.Logger
}

// NewProbe creates a startup probe for the configured model
func NewProbe(runtime RuntimeClient, model string, logger *zap.Logger) *Probe {
	return &Probe{
		runtime: runtime,
		model:   model,
		logger:  logger,
	}
}

// Run computes the snapshot. It never returns an error and never panics;
// every runtime failure maps onto an unhealthy snapshot so boot always
// completes.
func (p *Probe) Run(ctx context.Context, resourcesLoaded int) (snapshot Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("startup health probe panicked", zap.Any("panic", r))
			snapshot = p.snapshot(
				StatusUnhealthy,
				RuntimeDisconnected,
				fmt.Sprintf("Ollama health check could not be completed: %v", r),
				resourcesLoaded,
			)
		}
	}()

	if !p.runtime.Reachable(ctx) {
		return p.snapshot(
			StatusUnhealthy,
			RuntimeDisconnected,
			apperrors.ErrOllamaDisconnected.Message,
			resourcesLoaded,
		)
	}

	models, err := p.runtime.RunningModels(ctx)
	if err != nil {
		return p.snapshot(
			StatusUnhealthy,
			RuntimeDisconnected,
			fmt.Sprintf("Ollama model check could not be completed: %v", err),
			resourcesLoaded,
		)
	}

	if !p.modelLoaded(models) {
		return p.snapshot(
			StatusDegraded,
			RuntimeModelNotRunning,
			fmt.Sprintf(
				"Ollama is running but model '%s' is not loaded. Run 'ollama run %s' to start the model.",
				p.model, p.model,
			),
			resourcesLoaded,
		)
	}

	return p.snapshot(
		StatusHealthy,
		RuntimeConnected,
		"Ollama and model are ready",
		resourcesLoaded,
	)
}

// modelLoaded matches the configured model against the running set by base
// name, so "gpt-oss:20b" is satisfied by any loaded gpt-oss variant
func (p *Probe) modelLoaded(models []string) bool {
	want := ollama.BaseModelName(p.model)
	for _, model := range models {
		if ollama.BaseModelName(model) == want {
			return true
		}
	}
	return false
}

func (p *Probe) snapshot(status Status, runtime RuntimeStatus, message string, resourcesLoaded int) Snapshot {
	s := Snapshot{
		Status:          status,
		RuntimeStatus:   runtime,
		Message:         message,
		ModelName:       p.model,
		ResourcesLoaded: resourcesLoaded,
	}
	p.logger.Info("startup health computed",
		zap.String("status", string(s.Status)),
		zap.String("ollama", string(s.RuntimeStatus)),
		zap.String("model", s.ModelName),
		zap.Int("resources", s.ResourcesLoaded),
	)
	return s
}
