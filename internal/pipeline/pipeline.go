package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/kbreplace/internal/catalog"
	"github.com/nao1215/kbreplace/internal/model"
)

// Step is one stage of a lookup.
type Step interface {
	// Do executes the step, reading and filling in lookup.
	Do(ctx context.Context, lookup *model.Lookup) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order and stops at the first failure.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// NewLookupPipeline creates the standard search-then-detail pipeline.
func NewLookupPipeline(client *catalog.Client, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := New(WithLogger(logger))
	p.AddSteps(
		NewSearchStep(client, WithStepLogger(logger)),
		NewDetailStep(client, WithStepLogger(logger)),
	)
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. The first failure is recorded on
// lookup and returned; later steps do not run.
func (p *Pipeline) Execute(ctx context.Context, lookup *model.Lookup) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			lookup.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"kb", lookup.Input,
		)

		if err := step.Do(ctx, lookup); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"kb", lookup.Input,
				"error", err,
			)
			lookup.Fail(err)
			return err
		}
	}

	lookup.Complete()
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Resolve runs the standard lookup pipeline for one KB identifier.
// The returned lookup is non-nil even on failure.
func Resolve(ctx context.Context, client *catalog.Client, input string, logger *slog.Logger) (*model.Lookup, error) {
	lookup := model.NewLookup(input)
	err := NewLookupPipeline(client, logger).Execute(ctx, lookup)
	return lookup, err
}
