package tool

import (
	"context"

	ai "github.com/bistrograph/bistrograph"
)

// Handler is a function that executes a tool call and returns a result.
// The call contains the tool name, ID, and arguments as a JSON string.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler is a function that executes a tool call with typed arguments.
// The args parameter is automatically unmarshaled from the tool call's JSON
// arguments.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
