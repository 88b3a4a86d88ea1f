package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agentState struct {
	Question string   `json:"question"`
	Steps    []string `json:"steps"`
	Answer   string   `json:"answer"`
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing thread returns zero state", func(t *testing.T) {
		s := NewStore[agentState]()
		state, err := s.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.Empty(t, state.Question)

		// The thread now exists
		ids, err := s.ThreadIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "unknown")
	})

	t.Run("save and get round-trip", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "t1", &agentState{Question: "menu?", Steps: []string{"think"}}))

		got, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "menu?", got.Question)
		assert.Equal(t, []string{"think"}, got.Steps)
	})

	t.Run("returned state is an independent copy", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "t1", &agentState{Steps: []string{"a"}}))

		first, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		first.Steps = append(first.Steps, "mutated")

		second, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, second.Steps)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "t1", &agentState{Answer: "first"}))
		require.NoError(t, s.Save(ctx, "t1", &agentState{Answer: "second"}))

		got, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Answer)
	})

	t.Run("checkpoint and restore", func(t *testing.T) {
		s := NewStore[agentState]()

		id1, err := s.SaveCheckpoint(ctx, "t1", &agentState{Answer: "v1"}, "after step 1")
		require.NoError(t, err)
		_, err = s.SaveCheckpoint(ctx, "t1", &agentState{Answer: "v2"}, "after step 2")
		require.NoError(t, err)

		// Latest by default
		latest, err := s.Restore(ctx, "t1", "")
		require.NoError(t, err)
		assert.Equal(t, "v2", latest.Answer)

		// Specific checkpoint
		old, err := s.Restore(ctx, "t1", id1)
		require.NoError(t, err)
		assert.Equal(t, "v1", old.Answer)
	})

	t.Run("restore without checkpoints fails", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "t1", &agentState{}))

		_, err := s.Restore(ctx, "t1", "")
		assert.Error(t, err)
	})

	t.Run("checkpoint cap drops oldest", func(t *testing.T) {
		s := NewStore[agentState](WithMaxCheckpoints(2))

		_, err := s.SaveCheckpoint(ctx, "t1", &agentState{Answer: "v1"}, "")
		require.NoError(t, err)
		_, err = s.SaveCheckpoint(ctx, "t1", &agentState{Answer: "v2"}, "")
		require.NoError(t, err)
		_, err = s.SaveCheckpoint(ctx, "t1", &agentState{Answer: "v3"}, "")
		require.NoError(t, err)

		ckpts, err := s.Checkpoints(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, ckpts, 2)

		oldest, err := s.Restore(ctx, "t1", ckpts[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", oldest.Answer)
	})

	t.Run("create thread allocates unique ids", func(t *testing.T) {
		s := NewStore[agentState]()
		id1, err := s.CreateThread(ctx)
		require.NoError(t, err)
		id2, err := s.CreateThread(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("delete thread", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "t1", &agentState{Answer: "x"}))
		require.NoError(t, s.DeleteThread(ctx, "t1"))

		got, err := s.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Empty(t, got.Answer)
	})

	t.Run("evict older than", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "old", &agentState{}))
		require.NoError(t, s.Save(ctx, "new", &agentState{}))

		// Nothing is older than an hour yet
		n, err := s.EvictOlderThan(ctx, time.Hour)
		require.NoError(t, err)
		assert.Zero(t, n)

		// Everything is older than a negative age
		n, err = s.EvictOlderThan(ctx, -time.Second)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ids, err := s.ThreadIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("status counts threads and checkpoints", func(t *testing.T) {
		s := NewStore[agentState]()
		require.NoError(t, s.Save(ctx, "a", &agentState{}))
		_, err := s.SaveCheckpoint(ctx, "b", &agentState{}, "")
		require.NoError(t, err)
		_, err = s.SaveCheckpoint(ctx, "b", &agentState{}, "")
		require.NoError(t, err)

		st, err := s.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, st.ThreadCount)
		assert.Equal(t, 2, st.CheckpointCount)
	})
}
