package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type RunOptions struct {
	// StageTimeout bounds each stage; zero leaves stages unbounded.
	StageTimeout time.Duration
}

// Runner executes stages in order. A failing or panicking stage is reported
// and the next stage still runs.
type Runner struct {
	Reporter Reporter
	Logger   *zap.Logger
	Options  RunOptions
}

func (r Runner) Run(ctx context.Context, stages []Stage) Report {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{Results: make([]StageResult, 0, len(stages))}
	for _, stage := range stages {
		if r.Reporter != nil {
			r.Reporter.StageStarted(stage)
		}
		started := time.Now()
		stageErr := r.runStage(ctx, stage)
		elapsed := time.Since(started)

		report.Results = append(report.Results, StageResult{Name: stage.Name, Err: stageErr})
		if stageErr != nil {
			logger.Warn("stage failed",
				zap.String("stage", stage.Name),
				zap.Duration("elapsed", elapsed),
				zap.Error(stageErr),
			)
			if r.Reporter != nil {
				r.Reporter.StageFailed(stage, stageErr)
			}
			continue
		}
		logger.Info("stage succeeded", zap.String("stage", stage.Name), zap.Duration("elapsed", elapsed))
		if r.Reporter != nil {
			r.Reporter.StageSucceeded(stage)
		}
	}
	return report
}

func (r Runner) runStage(ctx context.Context, stage Stage) (stageErr error) {
	if stage.Action == nil {
		return fmt.Errorf("stage %s has no action", stage.Name)
	}
	stageCtx := ctx
	if r.Options.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, r.Options.StageTimeout)
		defer cancel()
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			stageErr = fmt.Errorf("stage %s panicked: %v", stage.Name, recovered)
		}
	}()
	return stage.Action(stageCtx)
}
