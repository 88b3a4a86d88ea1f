// Package event provides a unified event system for observing workflow and
// agent execution. Engines emit events through an optional sink; emission is
// non-blocking so a slow consumer never stalls a run.
package event

import (
	"time"

	ai "github.com/bistrograph/bistrograph"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when execution begins (pipeline run or agent run).
	RunStart Type = "run_start"

	// RunEnd fires when execution completes successfully.
	RunEnd Type = "run_end"

	// RunError fires when an unrecoverable error occurs.
	RunError Type = "run_error"
)

// Step lifecycle events
const (
	// StepStart fires when a step begins.
	StepStart Type = "step_start"

	// StepEnd fires when a step completes.
	StepEnd Type = "step_end"
)

// Tool call lifecycle events
const (
	// ToolCallStart fires when a tool call begins (contains tool name).
	ToolCallStart Type = "tool_call_start"

	// ToolCallResult fires with the tool execution result.
	ToolCallResult Type = "tool_call_result"
)

// Workflow-specific events
const (
	// RouteSelected fires when a router chooses a branch.
	RouteSelected Type = "route_selected"

	// LoopIteration fires at the start of each loop iteration.
	LoopIteration Type = "loop_iteration"

	// CheckpointSaved fires after a session checkpoint is persisted.
	CheckpointSaved Type = "checkpoint_saved"
)

// Event represents an observable occurrence during execution.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// StepName identifies the step for step-scoped events.
	StepName string

	// RouteName identifies the selected route for RouteSelected events.
	RouteName string

	// Iteration is the loop iteration (1-indexed) for LoopIteration events.
	Iteration int

	// ToolCall contains the tool call for tool-related events.
	ToolCall *ai.ToolCall

	// ToolResult contains the result for ToolCallResult events.
	ToolResult *ai.ToolResult

	// Response contains the model response for StepEnd events with output.
	Response *ai.Response

	// Error contains the error for RunError events.
	Error error

	// Message contains additional context (e.g. a checkpoint id or reason).
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Sink receives events. Implementations must be fast; emission is
// fire-and-forget.
type Sink func(Event)

// Emit sends an event with timestamp to the sink, if one is set.
func Emit(sink Sink, e Event) {
	if sink == nil {
		return
	}
	e.Timestamp = time.Now()
	sink(e)
}

// NewChannel creates a buffered event channel with standard capacity and a
// sink that feeds it without blocking. Events are dropped if the channel is
// full.
func NewChannel() (<-chan Event, Sink) {
	ch := make(chan Event, 100)
	sink := func(e Event) {
		select {
		case ch <- e:
		default:
			// Channel full - don't block
		}
	}
	return ch, sink
}
