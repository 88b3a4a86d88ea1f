package workflow

import (
	"context"
	"errors"

	"github.com/bistrograph/bistrograph/event"
)

// Termination describes how a workflow run ended.
type Termination string

const (
	// TerminationComplete indicates the workflow ran to completion.
	TerminationComplete Termination = "complete"

	// TerminationError indicates a step failed.
	TerminationError Termination = "error"

	// TerminationCancelled indicates the context was cancelled.
	TerminationCancelled Termination = "cancelled"

	// TerminationTimeout indicates a deadline was exceeded.
	TerminationTimeout Termination = "timeout"
)

// Result summarizes a workflow run. State is the same pointer the caller
// passed in; it reflects all mutations made by the steps that ran.
type Result[S any] struct {
	WorkflowName string
	State        *S
	Err          error
	Termination  Termination
}

// Workflow is the top-level orchestrator that wraps a root step.
// It provides the primary entry point for workflow execution.
type Workflow[S any] struct {
	name string
	root Step[S]
}

// New creates a new workflow with a root step.
func New[S any](name string, root Step[S]) *Workflow[S] {
	return &Workflow[S]{name: name, root: root}
}

// Name returns the workflow name.
func (w *Workflow[S]) Name() string { return w.name }

// Run executes the workflow synchronously.
func (w *Workflow[S]) Run(ctx context.Context, state *S, opts ...Option) (*Result[S], error) {
	options := ApplyOptions(opts...)

	event.Emit(options.Events, event.Event{Type: event.RunStart, StepName: w.name})

	if err := w.root.Run(ctx, state, opts...); err != nil {
		termination := TerminationError
		if errors.Is(err, context.Canceled) {
			termination = TerminationCancelled
		} else if errors.Is(err, context.DeadlineExceeded) {
			termination = TerminationTimeout
		}
		event.Emit(options.Events, event.Event{Type: event.RunError, StepName: w.name, Error: err})
		return &Result[S]{
			WorkflowName: w.name,
			State:        state,
			Err:          err,
			Termination:  termination,
		}, err
	}

	event.Emit(options.Events, event.Event{Type: event.RunEnd, StepName: w.name})
	return &Result[S]{
		WorkflowName: w.name,
		State:        state,
		Termination:  TerminationComplete,
	}, nil
}
