package mcp

import (
	"context"
	"encoding/json"
	"testing"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMCPTool(t *testing.T) {
	t.Run("raw schema carried through", func(t *testing.T) {
		schema := json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}}}`)
		def := ai.Tool{
			Name:        "search_menu",
			Description: "Search the restaurant menu",
			Parameters:  schema,
		}

		mcpTool := ToMCPTool(def)

		assert.Equal(t, "search_menu", mcpTool.Name)
		assert.Equal(t, "Search the restaurant menu", mcpTool.Description)
		assert.Equal(t, schema, mcpTool.RawInputSchema)
	})

	t.Run("nil parameters", func(t *testing.T) {
		mcpTool := ToMCPTool(ai.Tool{Name: "ping", Description: "Ping"})

		assert.Equal(t, "ping", mcpTool.Name)
		assert.Equal(t, "Ping", mcpTool.Description)
	})
}

func TestFromMCPTool(t *testing.T) {
	t.Run("raw schema preferred", func(t *testing.T) {
		schema := json.RawMessage(`{"type":"object"}`)
		mcpTool := mcp.NewToolWithRawSchema("search_wine", "Search the wine list", schema)

		def := FromMCPTool(mcpTool)

		assert.Equal(t, "search_wine", def.Name)
		assert.JSONEq(t, `{"type":"object"}`, string(def.Parameters))
	})

	t.Run("structured schema marshaled", func(t *testing.T) {
		mcpTool := mcp.NewTool("search_menu",
			mcp.WithDescription("Search the menu"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search keywords")),
		)

		def := FromMCPTool(mcpTool)

		assert.Equal(t, "search_menu", def.Name)
		assert.Contains(t, string(def.Parameters), `"query"`)
		assert.Contains(t, string(def.Parameters), `"required"`)
	})
}

func TestRoundTripTools(t *testing.T) {
	tools := []ai.Tool{
		{Name: "search_menu", Description: "Menu search", Parameters: json.RawMessage(`{"type":"object"}`)},
		{Name: "search_wine", Description: "Wine search", Parameters: json.RawMessage(`{"type":"object"}`)},
	}

	back := FromMCPTools(ToMCPTools(tools))

	require.Len(t, back, 2)
	assert.Equal(t, "search_menu", back[0].Name)
	assert.Equal(t, "search_wine", back[1].Name)
}

func TestToMCPCallToolRequest(t *testing.T) {
	t.Run("json arguments parsed", func(t *testing.T) {
		req := ToMCPCallToolRequest(ai.ToolCall{
			ID:        "call-1",
			Name:      "search_menu",
			Arguments: `{"query":"스테이크"}`,
		})

		assert.Equal(t, "search_menu", req.Params.Name)
		args, ok := req.Params.Arguments.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "스테이크", args["query"])
	})

	t.Run("non-json arguments passed through", func(t *testing.T) {
		req := ToMCPCallToolRequest(ai.ToolCall{Name: "echo", Arguments: "plain text"})

		assert.Equal(t, "plain text", req.Params.Arguments)
	})
}

func TestFromMCPCallToolResult(t *testing.T) {
	t.Run("text content joined", func(t *testing.T) {
		result := &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: "안심 스테이크"},
				mcp.TextContent{Type: "text", Text: "35000원"},
			},
		}

		tr := FromMCPCallToolResult("call-1", result)

		assert.Equal(t, "call-1", tr.ToolCallID)
		assert.Equal(t, "안심 스테이크\n35000원", tr.Content)
		assert.False(t, tr.IsError)
	})

	t.Run("error flag carried through", func(t *testing.T) {
		result := mcp.NewToolResultError("menu database unavailable")

		tr := FromMCPCallToolResult("call-2", result)

		assert.True(t, tr.IsError)
		assert.Contains(t, tr.Content, "menu database unavailable")
	})

	t.Run("nil result is an error", func(t *testing.T) {
		tr := FromMCPCallToolResult("call-3", nil)

		assert.True(t, tr.IsError)
	})
}

func TestNewServer(t *testing.T) {
	registry := tool.NewRegistry()

	type searchArgs struct {
		Query string `json:"query" desc:"Search keywords" required:"true"`
	}
	tool.MustRegisterFunc(registry, "search_menu", "Search the menu",
		func(ctx context.Context, args searchArgs) (string, error) {
			return "안심 스테이크 - 35000원", nil
		},
	)

	s := NewServer(registry, WithName("test-server"), WithVersion("0.1.0"))
	require.NotNil(t, s)
}
