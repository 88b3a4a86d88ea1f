package grade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
)

func fixedJudge(reply string) chat.Client {
	return chat.ClientFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		return &ai.Response{Content: reply}, nil
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		score  float64
		reason string
	}{
		{"well formed", "SCORE: 0.85\nREASON: covers the menu fully", 0.85, "covers the menu fully"},
		{"lowercase prefixes", "score: 0.3\nreason: off topic", 0.3, "off topic"},
		{"clamps above one", "SCORE: 1.7\nREASON: great", 1.0, "great"},
		{"clamps below zero", "SCORE: -0.2\nREASON: bad", 0.0, "bad"},
		{"garbage falls back with raw reply", "I think it is fine.", DefaultScore, "unparseable judge reply: I think it is fine."},
		{"non-numeric score falls back", "SCORE: high\nREASON: vibes", DefaultScore, "vibes"},
		{"empty reply falls back", "", DefaultScore, "unparseable judge reply: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestGraderEvaluate(t *testing.T) {
	t.Run("parses judge reply", func(t *testing.T) {
		g := NewGrader(fixedJudge("SCORE: 0.9\nREASON: complete answer"))
		result, err := g.Evaluate(context.Background(), "what is on the menu?", "steak and salmon")
		require.NoError(t, err)
		assert.InDelta(t, 0.9, result.Score, 1e-9)
		assert.True(t, result.Passed(0.7))
	})

	t.Run("unparseable reply uses default score", func(t *testing.T) {
		g := NewGrader(fixedJudge("looks good to me"))
		result, err := g.Evaluate(context.Background(), "q", "a")
		require.NoError(t, err)
		assert.InDelta(t, DefaultScore, result.Score, 1e-9)
		assert.Contains(t, result.Reason, "looks good to me")
		assert.False(t, result.Passed(0.7))
	})

	t.Run("transport errors propagate", func(t *testing.T) {
		boom := errors.New("connection refused")
		g := NewGrader(chat.ClientFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
			return nil, boom
		}))
		_, err := g.Evaluate(context.Background(), "q", "a")
		assert.ErrorIs(t, err, boom)
	})
}
