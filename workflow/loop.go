package workflow

import (
	"context"

	"github.com/bistrograph/bistrograph/event"
)

// LoopCondition evaluates state to determine if the loop should exit.
// Return true to exit the loop, false to continue iterating.
type LoopCondition[S any] func(ctx context.Context, state *S) bool

// LoopOption configures a Loop.
type LoopOption func(*loopConfig)

type loopConfig struct {
	maxIters   int
	bestEffort bool
}

// WithMaxIterations sets the maximum number of loop iterations.
// Default is 10.
func WithMaxIterations(n int) LoopOption {
	return func(c *loopConfig) {
		c.maxIters = n
	}
}

// WithBestEffort makes the loop exit cleanly when the iteration cap is
// reached instead of returning ErrMaxIterationsExceeded. State holds
// whatever the final iteration produced.
func WithBestEffort() LoopOption {
	return func(c *loopConfig) {
		c.bestEffort = true
	}
}

// Loop repeatedly executes a step until a condition returns true.
// Use for iterative refinement workflows where steps repeat based on
// evaluation results stored in state.
type Loop[S any] struct {
	name      string
	step      Step[S]
	condition LoopCondition[S]
	cfg       loopConfig
}

// NewLoop creates a loop that executes step until condition returns true.
// The condition is checked after each iteration, so the body always runs at
// least once. If the condition never returns true, the loop terminates after
// the iteration cap (default 10) and returns ErrMaxIterationsExceeded,
// unless WithBestEffort is set.
func NewLoop[S any](name string, step Step[S], condition LoopCondition[S], opts ...LoopOption) *Loop[S] {
	l := &Loop[S]{
		name:      name,
		step:      step,
		condition: condition,
		cfg:       loopConfig{maxIters: 10},
	}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	return l
}

// Name returns the loop name.
func (l *Loop[S]) Name() string { return l.name }

// Run executes the step repeatedly until the condition returns true.
func (l *Loop[S]) Run(ctx context.Context, state *S, opts ...Option) error {
	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	for i := 1; i <= l.cfg.maxIters; i++ {
		if err := ctx.Err(); err != nil {
			return &StepError{StepName: l.name, Err: err}
		}

		event.Emit(options.Events, event.Event{Type: event.LoopIteration, StepName: l.name, Iteration: i})

		stepCtx := ctx
		if options.StepTimeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, options.StepTimeout)
			defer cancel()
		}

		if err := l.step.Run(stepCtx, state, opts...); err != nil {
			if options.ErrorHandler != nil {
				if handlerErr := options.ErrorHandler(ctx, l.step.Name(), err); handlerErr != nil {
					return &StepError{StepName: l.name, Err: handlerErr}
				}
				if options.ContinueOnError {
					continue
				}
			}
			return &StepError{StepName: l.name, Err: err}
		}

		if l.condition(ctx, state) {
			return nil
		}
	}

	if l.cfg.bestEffort {
		return nil
	}
	return ErrMaxIterationsExceeded
}
