package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step represents a single named stage of an agent run. Execute receives
// the output of the previous step and returns the input of the next.
type Step struct {
	Name       string
	Execute    func(ctx context.Context, data interface{}) (interface{}, error)
	MaxRetries int
	RetryDelay time.Duration
}

// State represents the current state of a pipeline execution
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

// Pipeline orchestrates an ordered series of steps, threading data forward.
// A step that exhausts its retries fails the whole run; there is no
// compensation, agent runs never mutate state.
type Pipeline struct {
	id          string
	name        string
	steps       []Step
	state       State
	currentStep int
	logger      *zap.Logger
}

// NewPipeline creates a new pipeline instance
func NewPipeline(name string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		id:          generateRunID(),
		name:        name,
		steps:       make([]Step, 0),
		state:       StatePending,
		currentStep: 0,
		logger:      logger,
	}
}

// AddStep adds a step to the pipeline
func (p *Pipeline) AddStep(step Step) *Pipeline {
	p.steps = append(p.steps, step)
	return p
}

// Execute runs the pipeline
func (p *Pipeline) Execute(ctx context.Context, initialData interface{}) (interface{}, error) {
	p.state = StateRunning
	p.logger.Debug("starting pipeline",
		zap.String("run_id", p.id),
		zap.String("pipeline", p.name),
		zap.Int("total_steps", len(p.steps)),
	)

	var data interface{} = initialData

	for i, step := range p.steps {
		p.currentStep = i

		if err := ctx.Err(); err != nil {
			p.state = StateFailed
			return nil, err
		}

		p.logger.Debug("executing pipeline step",
			zap.String("run_id", p.id),
			zap.String("step", step.Name),
			zap.Int("step_number", i+1),
		)

		result, err := p.executeStepWithRetry(ctx, step, data)
		if err != nil {
			p.state = StateFailed
			p.logger.Error("pipeline step failed",
				zap.String("run_id", p.id),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return nil, fmt.Errorf("pipeline %s failed at step %s: %w", p.name, step.Name, err)
		}

		data = result
	}

	p.state = StateCompleted
	p.logger.Debug("pipeline completed",
		zap.String("run_id", p.id),
		zap.String("pipeline", p.name),
		zap.Int("completed_steps", len(p.steps)),
	)

	return data, nil
}

// executeStepWithRetry executes a step with retry logic. The retry delay is
// context-aware so a run cannot outlive its deadline while sleeping.
func (p *Pipeline) executeStepWithRetry(ctx context.Context, step Step, data interface{}) (interface{}, error) {
	maxRetries := step.MaxRetries
	if maxRetries == 0 {
		maxRetries = 1 // At least try once
	}

	retryDelay := step.RetryDelay
	if retryDelay == 0 {
		retryDelay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Debug("retrying pipeline step",
				zap.String("run_id", p.id),
				zap.String("step", step.Name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", maxRetries),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		result, err := step.Execute(ctx, data)
		if err == nil {
			return result, nil
		}

		// Deadline and cancellation are terminal, never retried
		if ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		p.logger.Warn("pipeline step execution failed",
			zap.String("run_id", p.id),
			zap.String("step", step.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("step %s failed after %d attempts: %w", step.Name, maxRetries, lastErr)
}

// GetState returns the current state of the pipeline
func (p *Pipeline) GetState() State {
	return p.state
}

// GetID returns the pipeline run ID
func (p *Pipeline) GetID() string {
	return p.id
}

// GetCurrentStep returns the current step index
func (p *Pipeline) GetCurrentStep() int {
	return p.currentStep
}

// generateRunID generates a unique pipeline run ID
func generateRunID() string {
	return fmt.Sprintf("run_%d", time.Now().UnixNano())
}

// Builder provides a fluent interface for assembling pipelines
type Builder struct {
	pipeline *Pipeline
}

// NewBuilder creates a new pipeline builder
func NewBuilder(name string, logger *zap.Logger) *Builder {
	return &Builder{
		pipeline: NewPipeline(name, logger),
	}
}

// WithStep adds a step to the pipeline
func (b *Builder) WithStep(name string, execute func(context.Context, interface{}) (interface{}, error)) *Builder {
	b.pipeline.AddStep(Step{
		Name:    name,
		Execute: execute,
	})
	return b
}

// WithRetryableStep adds a step with retry logic
func (b *Builder) WithRetryableStep(
	name string,
	execute func(context.Context, interface{}) (interface{}, error),
	maxRetries int,
	retryDelay time.Duration,
) *Builder {
	b.pipeline.AddStep(Step{
		Name:       name,
		Execute:    execute,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	})
	return b
}

// Build returns the constructed pipeline
func (b *Builder) Build() *Pipeline {
	return b.pipeline
}
