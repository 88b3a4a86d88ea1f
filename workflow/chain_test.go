package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chainState struct {
	Visited []string
	Value   int
}

func appendStep(name string) Step[chainState] {
	return NewFuncStep(name, func(ctx context.Context, s *chainState) error {
		s.Visited = append(s.Visited, name)
		return nil
	})
}

func TestChain(t *testing.T) {
	t.Run("executes steps in order", func(t *testing.T) {
		chain := NewChain("test", appendStep("a"), appendStep("b"), appendStep("c"))

		state := &chainState{}
		err := chain.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, state.Visited)
	})

	t.Run("steps see previous mutations", func(t *testing.T) {
		chain := NewChain("test",
			NewFuncStep("double", func(ctx context.Context, s *chainState) error {
				s.Value *= 2
				return nil
			}),
			NewFuncStep("inc", func(ctx context.Context, s *chainState) error {
				s.Value++
				return nil
			}),
		)

		state := &chainState{Value: 5}
		err := chain.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, 11, state.Value)
	})

	t.Run("stops on first error", func(t *testing.T) {
		boom := errors.New("boom")
		chain := NewChain("test",
			appendStep("a"),
			NewFuncStep("fail", func(ctx context.Context, s *chainState) error {
				return boom
			}),
			appendStep("c"),
		)

		state := &chainState{}
		err := chain.Run(context.Background(), state)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "fail", stepErr.StepName)

		// Earlier mutations survive
		assert.Equal(t, []string{"a"}, state.Visited)
	})

	t.Run("continue on error with handler", func(t *testing.T) {
		chain := NewChain("test",
			NewFuncStep("fail", func(ctx context.Context, s *chainState) error {
				return errors.New("ignored")
			}),
			appendStep("b"),
		)

		state := &chainState{}
		err := chain.Run(context.Background(), state,
			WithContinueOnError(true),
			WithErrorHandler(func(ctx context.Context, stepName string, err error) error {
				return nil
			}),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, state.Visited)
	})

	t.Run("cancelled context stops execution", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		chain := NewChain("test", appendStep("a"))
		err := chain.Run(ctx, &chainState{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("chains nest as steps", func(t *testing.T) {
		inner := NewChain("inner", appendStep("x"), appendStep("y"))
		outer := NewChain("outer", appendStep("a"), inner, appendStep("b"))

		state := &chainState{}
		err := outer.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "x", "y", "b"}, state.Visited)
	})
}
