// Package chat provides the canonical chat client interface.
//
// This package exists to provide a unified interface that can be used across
// the workflow, restaurant and tool packages without import cycles. The
// [github.com/bistrograph/bistrograph/client.Client] type implements it, as
// do the individual provider adapters.
package chat

import (
	"context"

	ai "github.com/bistrograph/bistrograph"
)

// Client is the boundary to the language model: it turns a conversation into
// a response. Implementations may fail (transport errors) or return
// low-quality output; callers are expected to have fallbacks.
type Client interface {
	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error)
}

// ClientFunc adapts a function to the Client interface. Useful for stubbing
// the model in tests.
type ClientFunc func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error)

// Chat calls the wrapped function.
func (f ClientFunc) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	return f(ctx, messages, opts...)
}
