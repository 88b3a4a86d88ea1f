package workflow

import (
	"context"

	"github.com/bistrograph/bistrograph/retry"
)

// RetryStep wraps a step with retry logic for transient failures.
type RetryStep[S any] struct {
	step Step[S]
	cfg  retry.Config
}

// NewRetryStep wraps step so transient errors are retried per cfg.
// Permanent and uncategorized errors propagate immediately.
func NewRetryStep[S any](step Step[S], cfg retry.Config) *RetryStep[S] {
	return &RetryStep[S]{step: step, cfg: cfg}
}

// Name returns the wrapped step's name.
func (r *RetryStep[S]) Name() string { return r.step.Name() }

// Run executes the wrapped step with retries.
func (r *RetryStep[S]) Run(ctx context.Context, state *S, opts ...Option) error {
	_, err := retry.Do(ctx, r.cfg, func() (struct{}, error) {
		return struct{}{}, r.step.Run(ctx, state, opts...)
	})
	return err
}
