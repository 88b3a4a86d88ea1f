package bistrograph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ToolCallStatus tracks the lifecycle of a recorded tool invocation.
// Transitions: PENDING → RUNNING → {SUCCESS, FAILED}. SUCCESS and FAILED are
// terminal.
type ToolCallStatus string

const (
	ToolCallPending ToolCallStatus = "PENDING"
	ToolCallRunning ToolCallStatus = "RUNNING"
	ToolCallSuccess ToolCallStatus = "SUCCESS"
	ToolCallFailed  ToolCallStatus = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
func (s ToolCallStatus) Terminal() bool {
	return s == ToolCallSuccess || s == ToolCallFailed
}

// ToolCallRecord is the bookkeeping entry for one tool invocation inside an
// agent run. Unlike ToolCall (the provider wire type), a record carries the
// full execution lifecycle: status, result, timing and error capture.
type ToolCallRecord struct {
	ID           string         `json:"id"`
	ToolName     string         `json:"toolName"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Status       ToolCallStatus `json:"status"`
	Result       string         `json:"result,omitempty"`
	Source       string         `json:"source,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	StartedAt    time.Time      `json:"startedAt,omitempty"`
	EndedAt      time.Time      `json:"endedAt,omitempty"`
}

// NewToolCallRecord creates a pending record for the named tool.
func NewToolCallRecord(toolName string, parameters map[string]any) *ToolCallRecord {
	return &ToolCallRecord{
		ID:         "call-" + uuid.New().String()[:8],
		ToolName:   toolName,
		Parameters: parameters,
		Status:     ToolCallPending,
	}
}

// Start marks the record as running. No-op if the record is already terminal.
func (r *ToolCallRecord) Start() {
	if r.Status.Terminal() {
		return
	}
	r.Status = ToolCallRunning
	r.StartedAt = time.Now()
}

// Complete marks the record as succeeded with the given result and source.
// No-op if the record is already terminal.
func (r *ToolCallRecord) Complete(result, source string) {
	if r.Status.Terminal() {
		return
	}
	r.Status = ToolCallSuccess
	r.Result = result
	r.Source = source
	r.EndedAt = time.Now()
}

// Fail marks the record as failed with the given error message.
// No-op if the record is already terminal.
func (r *ToolCallRecord) Fail(errorMessage string) {
	if r.Status.Terminal() {
		return
	}
	r.Status = ToolCallFailed
	r.ErrorMessage = errorMessage
	r.EndedAt = time.Now()
}

// Duration returns how long the call ran, or 0 if it never started/ended.
func (r *ToolCallRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Format renders the record as "tool(param=value, ...)" for prompts and logs.
func (r *ToolCallRecord) Format() string {
	return fmt.Sprintf("%s(%v)", r.ToolName, r.Parameters)
}
