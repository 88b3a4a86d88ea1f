package restaurant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/event"
	"github.com/bistrograph/bistrograph/workflow"
)

// actionRequest is the intended tool call extracted from reasoning output.
type actionRequest struct {
	Tool  string
	Input string
}

// extractAction pulls a tool request out of free reasoning text. The model
// signals an action with "Action:" / "Action Input:" lines; the check is a
// documented best-effort heuristic, so text without the marker simply means
// the model is done reasoning. Kept as the single place a structured output
// channel could replace the text protocol.
func extractAction(text string) *actionRequest {
	if !strings.Contains(text, "Action:") {
		return nil
	}

	var req actionRequest
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "Action Input:"); ok {
			req.Input = strings.TrimSpace(after)
		} else if after, ok := strings.CutPrefix(line, "Action:"); ok {
			req.Tool = strings.TrimSpace(after)
		}
	}
	if req.Tool == "" {
		return nil
	}
	return &req
}

// extractFinalAnswer returns the text after the "Final Answer:" marker, or
// the whole text when the model skipped the marker.
func extractFinalAnswer(text string) string {
	if idx := strings.Index(text, "Final Answer:"); idx >= 0 {
		return strings.TrimSpace(text[idx+len("Final Answer:"):])
	}
	return strings.TrimSpace(text)
}

// RunReAct executes the reasoning/acting agent: up to the cycle cap of
// {reason, extract action, act, observe} iterations, with the full state
// checkpointed after every completed cycle so a crash mid-loop loses at most
// one unconfirmed cycle. Conversation history persists under threadID across
// runs; pass an empty threadID to start a fresh thread.
func (s *Service) RunReAct(ctx context.Context, query, threadID string) (*ReActState, error) {
	if isBlank(query) {
		return nil, ErrEmptyQuery
	}

	if threadID == "" {
		id, err := s.reactMemory.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		threadID = id
	}

	state, err := s.reactMemory.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}

	state.OriginalInput = query
	state.ThreadID = threadID
	state.Iterations = 0
	state.FinalAnswer = ""
	state.FailureReason = ""
	state.Stage = StageReasoning
	state.StartedAt = time.Now()
	state.Messages = append(state.Messages, ai.NewUserMessage(query))

	system := fmt.Sprintf(reactSystemPrompt, s.describeTools())

	cycle := workflow.NewFuncStep("react_cycle", func(ctx context.Context, st *ReActState) error {
		return s.reactCycle(ctx, st, threadID, system)
	})
	loop := workflow.NewLoop("react_loop", cycle,
		func(ctx context.Context, st *ReActState) bool { return st.Stage.Terminal() },
		workflow.WithMaxIterations(s.maxCycles),
		workflow.WithBestEffort(),
	)

	_, err = workflow.New("react", loop).Run(ctx, state, workflow.WithEvents(s.events))
	if err != nil {
		state.Stage = StageFailed
		state.FailureReason = err.Error()
	} else if !state.Stage.Terminal() {
		state.Stage = StageMaxIterations
		state.FinalAnswer = maxIterationsAnswer
		state.Messages = append(state.Messages, ai.NewAssistantMessage(maxIterationsAnswer))
	}
	state.EndedAt = time.Now()

	if saveErr := s.reactMemory.Save(ctx, threadID, state); saveErr != nil {
		return state, saveErr
	}
	return state, nil
}

// reactCycle runs one reason/act/observe iteration.
func (s *Service) reactCycle(ctx context.Context, st *ReActState, threadID, system string) error {
	st.Stage = StageReasoning

	msgs := append([]ai.Message{ai.NewSystemMessage(system)}, st.Messages...)
	resp, err := s.client.Chat(ctx, msgs)
	if err != nil {
		return err
	}
	st.Iterations++
	st.Messages = append(st.Messages, ai.NewAssistantMessage(resp.Content))

	action := extractAction(resp.Content)
	if action == nil {
		st.FinalAnswer = extractFinalAnswer(resp.Content)
		st.Stage = StageCompleted
		return nil
	}

	st.Stage = StageActing
	record := ai.NewToolCallRecord(action.Tool, parseActionInput(action.Input))
	record.Start()
	st.ToolCalls = append(st.ToolCalls, record)

	call := ai.ToolCall{ID: record.ID, Name: action.Tool, Arguments: actionArguments(action.Input)}
	event.Emit(s.events, event.Event{Type: event.ToolCallStart, ToolCall: &call})

	result, err := s.registry.Execute(ctx, call)
	if err != nil {
		// Unknown tool: the model asked for something we don't have.
		record.Fail(err.Error())
		st.Stage = StageFailed
		st.FailureReason = err.Error()
		return nil
	}

	if result.IsError {
		record.Fail(result.Content)
	} else {
		record.Complete(result.Content, result.Source)
	}
	event.Emit(s.events, event.Event{Type: event.ToolCallResult, ToolResult: &result})

	st.Messages = append(st.Messages, ai.NewUserMessage("Observation: "+result.Content))

	// Persist the cycle before reasoning again; a crash from here loses at
	// most the next, unconfirmed cycle.
	if ckptID, ckptErr := s.reactMemory.SaveCheckpoint(ctx, threadID, st, fmt.Sprintf("cycle-%d", st.Iterations)); ckptErr == nil {
		event.Emit(s.events, event.Event{Type: event.CheckpointSaved, Message: ckptID})
	}
	return nil
}

// describeTools renders the registry for the ReAct system prompt.
func (s *Service) describeTools() string {
	var b strings.Builder
	for _, t := range s.registry.Tools() {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	if b.Len() == 0 {
		return "- (no tools available)"
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseActionInput decodes the action input for record keeping. Non-JSON
// input is preserved under a raw key rather than dropped.
func parseActionInput(input string) map[string]any {
	if input == "" {
		return nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(input), &params); err == nil {
		return params
	}
	return map[string]any{"raw": input}
}

// actionArguments normalizes the action input into a JSON arguments string.
func actionArguments(input string) string {
	if input == "" {
		return "{}"
	}
	if json.Valid([]byte(input)) {
		return input
	}
	data, err := json.Marshal(map[string]string{"query": input})
	if err != nil {
		return "{}"
	}
	return string(data)
}

// isBlank reports whether the query is empty or whitespace.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
