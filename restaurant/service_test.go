package restaurant

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
	"github.com/bistrograph/bistrograph/retrieve"
)

// testRetriever builds a small Korean menu/wine index shared by the tests.
func testRetriever(t *testing.T) *retrieve.Retriever {
	t.Helper()
	r := retrieve.NewRetriever()
	r.Add(ai.Document{
		ID:      "menu-steak",
		Title:   "안심 스테이크",
		Content: "부드러운 안심 스테이크입니다. 가격은 35000원입니다.",
		Type:    ai.DocumentTypeMenu,
	})
	r.Add(ai.Document{
		ID:      "menu-salmon",
		Title:   "연어구이",
		Content: "노르웨이산 연어구이입니다. 가격은 28000원입니다.",
		Type:    ai.DocumentTypeMenu,
	})
	r.Add(ai.Document{
		ID:      "menu-salad",
		Title:   "퀴노아 샐러드",
		Content: "신선한 퀴노아 샐러드입니다. 가격은 18000원입니다.",
		Type:    ai.DocumentTypeMenu,
	})
	r.Add(ai.Document{
		ID:      "wine-cabernet",
		Title:   "카베르네 소비뇽",
		Content: "스테이크와 잘 어울리는 레드 와인입니다. 가격은 60000원입니다.",
		Type:    ai.DocumentTypeWine,
	})
	return r
}

// scriptedClient stubs the model for the RAG tests. It dispatches on the
// system prompt: grading calls walk the scores script, rewriting replies
// off-protocol, and everything else is a generation.
type scriptedClient struct {
	mu          sync.Mutex
	scores      []string
	generations int
	grades      int
}

func (c *scriptedClient) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	system := ""
	if len(messages) > 0 && messages[0].Role == ai.RoleSystem {
		system = messages[0].Content
	}

	switch {
	case strings.Contains(system, "quality evaluator"):
		idx := c.grades
		if idx >= len(c.scores) {
			idx = len(c.scores) - 1
		}
		c.grades++
		return &ai.Response{Content: "SCORE: " + c.scores[idx] + "\nREASON: scripted"}, nil
	case strings.Contains(system, "You rewrite"):
		return &ai.Response{Content: "no protocol here"}, nil
	default:
		c.generations++
		return &ai.Response{Content: "안심 스테이크는 35000원입니다."}, nil
	}
}

func (c *scriptedClient) generationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations
}

// failingClient always fails with a transient transport error.
var failingClient = chat.ClientFunc(func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	return nil, ai.NewTransientError("model unreachable", 503, nil)
})

// newTestService wires a service around the stub client and the test index.
func newTestService(t *testing.T, client chat.Client, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithRetriever(testRetriever(t))}, opts...)
	s, err := NewService(client, opts...)
	require.NoError(t, err)
	return s
}
