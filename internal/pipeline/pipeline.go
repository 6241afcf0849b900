package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/logger"
	"github.com/dvloznov/fraudprep/internal/report"
)

// Step is a single stage in the preparation pipeline.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across pipeline steps. Table is the
// transactions table as the stages transform it.
type State struct {
	Config   Config
	Manifest *Manifest

	Table  *dataset.Table
	Users  *dataset.Table
	Cards  *dataset.Table
	Report *report.Result
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// New creates a pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, recording each in the manifest.
// The first failure aborts the chain.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	for _, step := range p.steps {
		stageLog := logger.WithStage(log, step.Name())
		ctx := logger.WithContext(ctx, stageLog)

		runID, err := state.Manifest.Start(step.Name())
		if err != nil {
			return fmt.Errorf("stage %s: %w", step.Name(), err)
		}

		stageLog.Info().Msg("stage started")
		stepErr := step.Execute(ctx, state)

		rows := 0
		if state.Table != nil {
			rows = state.Table.Len()
		}
		if err := state.Manifest.Finish(runID, rows, stepErr); err != nil {
			return fmt.Errorf("stage %s: %w", step.Name(), err)
		}
		if stepErr != nil {
			stageLog.Error().Err(stepErr).Msg("stage failed")
			return fmt.Errorf("stage %s: %w", step.Name(), stepErr)
		}
		stageLog.Info().Int("rows", rows).Msg("stage finished")
	}
	return nil
}

// NewPreparationPipeline creates the standard label → clean → join →
// balance → derive → report chain.
func NewPreparationPipeline() *Pipeline {
	return New(
		&LabelStep{},
		&CleanStep{},
		&JoinStep{},
		&BalanceStep{},
		&DeriveStep{},
		&ReportStep{},
	)
}
