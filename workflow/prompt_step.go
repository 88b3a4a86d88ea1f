package workflow

import (
	"context"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
	"github.com/bistrograph/bistrograph/event"
)

// PromptFunc generates messages from state for an LLM call.
type PromptFunc[S any] func(state *S) []ai.Message

// AssignFunc stores an LLM response back into state.
type AssignFunc[S any] func(state *S, resp *ai.Response)

// PromptStep makes a single LLM call with a dynamic prompt and writes the
// response into state through an assign function.
type PromptStep[S any] struct {
	name     string
	client   chat.Client
	prompt   PromptFunc[S]
	assign   AssignFunc[S]
	chatOpts []ai.Option
}

// NewPromptStep creates a step for a single LLM call.
// The prompt function generates messages from current state; assign stores
// the response (may be nil to discard it).
func NewPromptStep[S any](name string, c chat.Client, prompt PromptFunc[S], assign AssignFunc[S], opts ...ai.Option) *PromptStep[S] {
	return &PromptStep[S]{
		name:     name,
		client:   c,
		prompt:   prompt,
		assign:   assign,
		chatOpts: opts,
	}
}

// Name returns the step name.
func (p *PromptStep[S]) Name() string { return p.name }

// Run executes the LLM call.
func (p *PromptStep[S]) Run(ctx context.Context, state *S, opts ...Option) error {
	options := ApplyOptions(opts...)

	chatOpts := make([]ai.Option, 0, len(p.chatOpts)+len(options.ChatOptions))
	chatOpts = append(chatOpts, p.chatOpts...)
	chatOpts = append(chatOpts, options.ChatOptions...)

	msgs := p.prompt(state)
	resp, err := p.client.Chat(ctx, msgs, chatOpts...)
	if err != nil {
		return err
	}

	event.Emit(options.Events, event.Event{Type: event.StepEnd, StepName: p.name, Response: resp})

	if p.assign != nil {
		p.assign(state, resp)
	}
	return nil
}
