package restaurant

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
)

// sequenceClient replays scripted responses in order, repeating the last one.
type sequenceClient struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (c *sequenceClient) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	c.calls++
	return &ai.Response{Content: c.responses[idx]}, nil
}

func TestExtractAction(t *testing.T) {
	t.Run("well-formed action", func(t *testing.T) {
		req := extractAction("Thought: need the menu\nAction: search_menu\nAction Input: {\"query\": \"스테이크\"}")
		require.NotNil(t, req)
		assert.Equal(t, "search_menu", req.Tool)
		assert.JSONEq(t, `{"query": "스테이크"}`, req.Input)
	})

	t.Run("no marker means done", func(t *testing.T) {
		assert.Nil(t, extractAction("Final Answer: 35000원입니다."))
	})

	t.Run("marker without tool name is ignored", func(t *testing.T) {
		assert.Nil(t, extractAction("Action:\nAction Input: {}"))
	})
}

func TestExtractFinalAnswer(t *testing.T) {
	assert.Equal(t, "35000원입니다.", extractFinalAnswer("Thought: done\nFinal Answer: 35000원입니다."))
	assert.Equal(t, "그냥 답변", extractFinalAnswer("그냥 답변"))
}

func TestRunReAct(t *testing.T) {
	ctx := context.Background()

	t.Run("no action marker terminates after one iteration", func(t *testing.T) {
		client := &sequenceClient{responses: []string{"Final Answer: 안심 스테이크는 35000원입니다."}}
		s := newTestService(t, client)

		state, err := s.RunReAct(ctx, "스테이크 가격은?", "")
		require.NoError(t, err)

		assert.Equal(t, StageCompleted, state.Stage)
		assert.Equal(t, 1, state.Iterations)
		assert.Empty(t, state.ToolCalls)
		assert.Equal(t, "안심 스테이크는 35000원입니다.", state.FinalAnswer)
	})

	t.Run("one tool cycle then answer", func(t *testing.T) {
		client := &sequenceClient{responses: []string{
			"Thought: 메뉴를 찾아보자\nAction: search_menu\nAction Input: {\"query\": \"스테이크\"}",
			"Final Answer: 안심 스테이크는 35000원입니다.",
		}}
		s := newTestService(t, client)

		state, err := s.RunReAct(ctx, "스테이크 가격은?", "")
		require.NoError(t, err)

		assert.Equal(t, StageCompleted, state.Stage)
		assert.Equal(t, 2, state.Iterations)
		require.Len(t, state.ToolCalls, 1)
		assert.Equal(t, "search_menu", state.ToolCalls[0].ToolName)
		assert.Equal(t, ai.ToolCallSuccess, state.ToolCalls[0].Status)
		assert.Contains(t, state.ToolCalls[0].Result, "스테이크")
		assert.Equal(t, "search_menu", state.ToolCalls[0].Source)
	})

	t.Run("endless actions stop at the iteration cap", func(t *testing.T) {
		client := &sequenceClient{responses: []string{
			"Action: search_menu\nAction Input: {\"query\": \"스테이크\"}",
		}}
		s := newTestService(t, client)

		state, err := s.RunReAct(ctx, "스테이크 가격은?", "")
		require.NoError(t, err)

		assert.Equal(t, StageMaxIterations, state.Stage)
		assert.Equal(t, DefaultMaxCycles, state.Iterations)
		assert.Len(t, state.ToolCalls, DefaultMaxCycles)
		assert.Equal(t, maxIterationsAnswer, state.FinalAnswer)
	})

	t.Run("unknown tool fails the run", func(t *testing.T) {
		client := &sequenceClient{responses: []string{
			"Action: teleport\nAction Input: {\"query\": \"달\"}",
		}}
		s := newTestService(t, client)

		state, err := s.RunReAct(ctx, "달에 가고 싶어요", "")
		require.NoError(t, err)

		assert.Equal(t, StageFailed, state.Stage)
		assert.NotEmpty(t, state.FailureReason)
		require.Len(t, state.ToolCalls, 1)
		assert.Equal(t, ai.ToolCallFailed, state.ToolCalls[0].Status)
	})

	t.Run("checkpoints are written after each tool cycle", func(t *testing.T) {
		client := &sequenceClient{responses: []string{
			"Action: search_menu\nAction Input: {\"query\": \"스테이크\"}",
			"Action: search_wine\nAction Input: {\"query\": \"스테이크\"}",
			"Final Answer: 카베르네 소비뇽을 추천합니다.",
		}}
		s := newTestService(t, client)

		state, err := s.RunReAct(ctx, "스테이크에 어울리는 와인은?", "")
		require.NoError(t, err)
		require.Equal(t, StageCompleted, state.Stage)

		ckpts, err := s.ThreadMemory().Checkpoints(ctx, state.ThreadID)
		require.NoError(t, err)
		assert.Len(t, ckpts, 2, "one checkpoint per completed act+observe cycle")
	})

	t.Run("thread history persists across runs", func(t *testing.T) {
		client := &sequenceClient{responses: []string{"Final Answer: 네, 있습니다."}}
		s := newTestService(t, client)

		first, err := s.RunReAct(ctx, "스테이크 있나요?", "")
		require.NoError(t, err)

		second, err := s.RunReAct(ctx, "가격은요?", first.ThreadID)
		require.NoError(t, err)

		assert.Equal(t, first.ThreadID, second.ThreadID)
		assert.Equal(t, "스테이크 있나요?", second.Messages[0].Content)
		assert.Len(t, second.Messages, 4)
	})

	t.Run("transport failure marks the run failed", func(t *testing.T) {
		s := newTestService(t, failingClient)

		state, err := s.RunReAct(ctx, "스테이크 있나요?", "")
		require.NoError(t, err)

		assert.Equal(t, StageFailed, state.Stage)
		assert.NotEmpty(t, state.FailureReason)
		assert.Zero(t, state.Iterations)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		s := newTestService(t, &sequenceClient{responses: []string{"x"}})

		_, err := s.RunReAct(ctx, "", "")
		require.Error(t, err)
		assert.True(t, ai.IsUserInput(err))
	})
}

var _ chat.Client = (*sequenceClient)(nil)
