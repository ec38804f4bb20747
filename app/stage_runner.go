package app

import (
	"context"
	"time"

	"likertlab/domain/core"
	"likertlab/domain/stage"
	"likertlab/internal"
	"likertlab/internal/errors"
)

// StageFunc performs one stage and returns warnings worth recording
type StageFunc func(ctx context.Context) ([]string, error)

// StageRunner handles execution of pipeline stages, one at a time
type StageRunner struct {
	logger *internal.Logger
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *internal.Logger) *StageRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StageRunner{logger: logger.With("pipeline")}
}

// Execute runs fn as the named stage and appends its outcome to result.
// A cancelled context fails the stage before it starts.
func (r *StageRunner) Execute(ctx context.Context, name stage.StageName, fn StageFunc, result *stage.PipelineResult) error {
	if err := ctx.Err(); err != nil {
		r.logger.Warn("stage %s skipped: %v", name, err)
		return errors.InStage(name, err)
	}

	start := time.Now()
	r.logger.Debug("stage %s started", name)

	warnings, err := fn(ctx)
	stageResult := stage.StageResult{
		StageName:  name,
		Kind:       name.Kind(),
		Success:    err == nil,
		Warnings:   warnings,
		Duration:   core.Since(start),
		ExecutedAt: core.Now(),
	}
	if err != nil {
		stageResult.Error = err.Error()
	}
	result.AddResult(stageResult)

	if err != nil {
		r.logger.Error("stage %s failed after %dms: %v", name, stageResult.Duration, err)
		return errors.InStage(name, err)
	}
	for _, w := range warnings {
		r.logger.Warn("stage %s: %s", name, w)
	}
	r.logger.Info("stage %s completed in %dms", name, stageResult.Duration)
	return nil
}
