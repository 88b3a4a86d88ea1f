package restaurant

import (
	"context"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/event"
)

// RunToolCalling executes the tool-calling agent: the model receives the
// registry's tool definitions over the provider's native tool-call channel
// and the loop executes requested tools until the model answers in plain
// text. The cycle cap guards against a model that never stops calling tools.
func (s *Service) RunToolCalling(ctx context.Context, query string) (string, error) {
	if isBlank(query) {
		return "", ErrEmptyQuery
	}

	msgs := []ai.Message{
		ai.NewSystemMessage(toolCallingPrompt),
		ai.NewUserMessage(query),
	}

	for i := 0; i < s.maxCycles; i++ {
		resp, err := s.client.Chat(ctx, msgs, ai.WithTools(s.registry.Tools()))
		if err != nil {
			return fallbackAnswer, nil
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				return fallbackAnswer, nil
			}
			return resp.Content, nil
		}

		msgs = append(msgs, ai.NewToolCallMessage(resp.ToolCalls...))

		results := make([]ai.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			call := call
			event.Emit(s.events, event.Event{Type: event.ToolCallStart, ToolCall: &call})

			result, err := s.registry.Execute(ctx, call)
			if err != nil {
				// Unknown tool: tell the model so it can correct itself.
				result = ai.ToolResult{ToolCallID: call.ID, Content: err.Error(), Source: call.Name, IsError: true}
			}
			event.Emit(s.events, event.Event{Type: event.ToolCallResult, ToolResult: &result})
			results = append(results, result)
		}
		msgs = append(msgs, ai.NewToolResultMessage(results...))
	}

	return maxIterationsAnswer, nil
}
