package workflow

import (
	"context"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/event"
)

// ErrorHandler is called when a step encounters an error.
// Return nil to suppress the error, or return an error to propagate it.
type ErrorHandler func(ctx context.Context, stepName string, err error) error

// Options contains configuration for workflow execution.
type Options struct {
	// Timeout sets a deadline for the entire workflow.
	Timeout time.Duration

	// StepTimeout sets default timeout for individual steps.
	StepTimeout time.Duration

	// ErrorHandler is called on step errors.
	ErrorHandler ErrorHandler

	// ContinueOnError allows workflow to continue after step errors.
	ContinueOnError bool

	// Events receives execution events. Nil means no emission.
	Events event.Sink

	// ChatOptions are passed to LLM calls within steps.
	ChatOptions []ai.Option
}

// Option is a functional option for workflow configuration.
type Option func(*Options)

// WithTimeout sets the overall workflow timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithStepTimeout sets the default timeout for each step.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *Options) {
		o.ErrorHandler = fn
	}
}

// WithContinueOnError allows the workflow to continue after errors.
func WithContinueOnError(enabled bool) Option {
	return func(o *Options) {
		o.ContinueOnError = enabled
	}
}

// WithEvents sets the sink that receives execution events.
func WithEvents(sink event.Sink) Option {
	return func(o *Options) {
		o.Events = sink
	}
}

// WithChatOptions passes options to LLM calls.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// ApplyOptions applies functional options with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		StepTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
