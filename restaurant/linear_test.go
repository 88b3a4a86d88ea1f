package restaurant

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
)

func TestRunLinear(t *testing.T) {
	echo := chat.ClientFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		return &ai.Response{Content: "오늘의 추천입니다."}, nil
	})

	t.Run("completes with a recommendation", func(t *testing.T) {
		s := newTestService(t, echo)

		state, err := s.RunLinear(context.Background())
		require.NoError(t, err)

		assert.Equal(t, StageCompleted, state.Stage)
		assert.Contains(t, preferences, state.Preference)
		assert.NotEmpty(t, state.MenuItem)
		assert.Greater(t, state.Price, 0)
		assert.Equal(t, "오늘의 추천입니다.", state.Answer)
		assert.False(t, state.EndedAt.IsZero())
	})

	t.Run("seeded rand is reproducible", func(t *testing.T) {
		a := newTestService(t, echo, WithRand(rand.New(rand.NewSource(42))))
		b := newTestService(t, echo, WithRand(rand.New(rand.NewSource(42))))

		sa, err := a.RunLinear(context.Background())
		require.NoError(t, err)
		sb, err := b.RunLinear(context.Background())
		require.NoError(t, err)

		assert.Equal(t, sa.Preference, sb.Preference)
		assert.Equal(t, sa.MenuItem, sb.MenuItem)
	})

	t.Run("menu lookup matches the preference table", func(t *testing.T) {
		s := newTestService(t, echo, WithRand(rand.New(rand.NewSource(7))))

		state, err := s.RunLinear(context.Background())
		require.NoError(t, err)

		item := menuByPreference[state.Preference]
		assert.Equal(t, item.Name, state.MenuItem)
		assert.Equal(t, item.Price, state.Price)
	})

	t.Run("model failure falls back to canned text", func(t *testing.T) {
		s := newTestService(t, failingClient)

		state, err := s.RunLinear(context.Background())
		require.NoError(t, err)

		assert.Equal(t, StageCompleted, state.Stage)
		assert.Contains(t, state.Answer, state.MenuItem)
		assert.Contains(t, state.Answer, "원입니다")
	})
}
