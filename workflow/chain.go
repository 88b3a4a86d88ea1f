package workflow

import (
	"context"

	"github.com/bistrograph/bistrograph/event"
)

// Chain executes steps sequentially, passing state between them.
type Chain[S any] struct {
	name  string
	steps []Step[S]
}

// NewChain creates a sequential workflow.
func NewChain[S any](name string, steps ...Step[S]) *Chain[S] {
	return &Chain[S]{name: name, steps: steps}
}

// Name returns the chain name.
func (c *Chain[S]) Name() string { return c.name }

// Run executes steps sequentially. Execution stops at the first step error
// unless an ErrorHandler suppresses it and ContinueOnError is set.
func (c *Chain[S]) Run(ctx context.Context, state *S, opts ...Option) error {
	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{StepName: step.Name(), Err: err}
		}

		stepCtx := ctx
		if options.StepTimeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, options.StepTimeout)
			defer cancel()
		}

		event.Emit(options.Events, event.Event{Type: event.StepStart, StepName: step.Name()})

		if err := step.Run(stepCtx, state, opts...); err != nil {
			if options.ErrorHandler != nil {
				if handlerErr := options.ErrorHandler(ctx, step.Name(), err); handlerErr != nil {
					return &StepError{StepName: step.Name(), Err: handlerErr}
				}
				if options.ContinueOnError {
					continue
				}
			}
			event.Emit(options.Events, event.Event{Type: event.RunError, StepName: step.Name(), Error: err})
			return &StepError{StepName: step.Name(), Err: err}
		}

		event.Emit(options.Events, event.Event{Type: event.StepEnd, StepName: step.Name()})
	}

	return nil
}
