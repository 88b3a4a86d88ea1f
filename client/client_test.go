package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
	"github.com/bistrograph/bistrograph/retry"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("missing api key", func(t *testing.T) {
		_, err := New(ctx, Config{Provider: ProviderAnthropic})
		var missing *ErrMissingAPIKey
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ProviderAnthropic, missing.Provider)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, Config{Provider: "yahoo", APIKey: "k"})
		var unknown *ErrUnknownProvider
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("known providers construct", func(t *testing.T) {
		for _, p := range []Provider{ProviderAnthropic, ProviderOpenAI} {
			c, err := New(ctx, Config{Provider: p, APIKey: "test-key"})
			require.NoError(t, err)
			assert.Equal(t, p, c.Provider())
		}
	})
}

func TestChatRetries(t *testing.T) {
	calls := 0
	backend := chat.ClientFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		calls++
		if calls < 2 {
			return nil, ai.NewTransientError("overloaded", 529, nil)
		}
		return &ai.Response{Content: "ok"}, nil
	})

	c := NewFromBackend(backend, retry.Config{MaxAttempts: 3, Multiplier: 1.0})
	resp, err := c.Chat(context.Background(), []ai.Message{ai.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, calls)
}

func TestFromEnv(t *testing.T) {
	t.Run("explicit provider", func(t *testing.T) {
		t.Setenv(EnvProvider, "openai")
		t.Setenv(EnvOpenAIKey, "test-key")

		c, err := FromEnv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, c.Provider())
	})

	t.Run("first configured key wins", func(t *testing.T) {
		t.Setenv(EnvProvider, "")
		t.Setenv(EnvAnthropicKey, "test-key")
		t.Setenv(EnvOpenAIKey, "other-key")

		c, err := FromEnv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, c.Provider())
	})

	t.Run("no keys at all", func(t *testing.T) {
		t.Setenv(EnvProvider, "")
		t.Setenv(EnvAnthropicKey, "")
		t.Setenv(EnvOpenAIKey, "")
		t.Setenv(EnvGoogleKey, "")

		_, err := FromEnv(context.Background())
		assert.Error(t, err)
	})
}
