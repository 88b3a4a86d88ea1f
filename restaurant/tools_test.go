package restaurant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/tool"
)

func TestSearchTools(t *testing.T) {
	ctx := context.Background()
	registry := tool.NewRegistry()
	require.NoError(t, RegisterSearchTools(registry, testRetriever(t)))

	t.Run("both tools registered", func(t *testing.T) {
		assert.Equal(t, []string{"search_menu", "search_wine"}, registry.Names())
	})

	t.Run("menu search finds the steak", func(t *testing.T) {
		result, err := registry.Execute(ctx, ai.ToolCall{
			ID: "c1", Name: "search_menu", Arguments: `{"query":"스테이크"}`,
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, result.Content, "안심 스테이크")
	})

	t.Run("wine search stays in the wine list", func(t *testing.T) {
		result, err := registry.Execute(ctx, ai.ToolCall{
			ID: "c2", Name: "search_wine", Arguments: `{"query":"스테이크"}`,
		})
		require.NoError(t, err)
		assert.Contains(t, result.Content, "카베르네 소비뇽")
		assert.NotContains(t, result.Content, "연어구이")
	})

	t.Run("miss returns the sentinel", func(t *testing.T) {
		result, err := registry.Execute(ctx, ai.ToolCall{
			ID: "c3", Name: "search_menu", Arguments: `{"query":"초밥"}`,
		})
		require.NoError(t, err)
		assert.Equal(t, NoMenuResults, result.Content)
	})
}

func TestRegisterWebSearchTool(t *testing.T) {
	registry := tool.NewRegistry()
	searcher := webSearcherFunc(func(ctx context.Context, query string, maxResults int) (string, error) {
		return "1. 결과\n본문\n(https://example.com)", nil
	})
	require.NoError(t, RegisterWebSearchTool(registry, searcher))

	result, err := registry.Execute(context.Background(), ai.ToolCall{
		ID: "c1", Name: "web_search", Arguments: `{"query":"와인 트렌드"}`,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "결과")
}

type webSearcherFunc func(ctx context.Context, query string, maxResults int) (string, error)

func (f webSearcherFunc) SearchFormatted(ctx context.Context, query string, maxResults int) (string, error) {
	return f(ctx, query, maxResults)
}
