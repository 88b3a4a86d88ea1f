// Package memory provides thread-scoped session state with checkpointing.
//
// Sessions are keyed by thread ID. State snapshots round-trip through JSON,
// so callers always receive independent copies; mutating a returned state
// never affects the stored session until it is saved back. Concurrent saves
// to the same thread resolve last-write-wins.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/store"
)

// Checkpoint is a point-in-time snapshot of session state.
type Checkpoint struct {
	ID        string          `json:"id"`
	Label     string          `json:"label,omitempty"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

type session struct {
	State       json.RawMessage `json:"state"`
	Checkpoints []Checkpoint    `json:"checkpoints,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Status summarizes the store contents.
type Status struct {
	ThreadCount     int
	CheckpointCount int
}

// DefaultRetention is the suggested maxAge for EvictOlderThan when cleaning
// up idle threads.
const DefaultRetention = 24 * time.Hour

// Store holds per-thread session state of type S.
type Store[S any] struct {
	adapter store.Adapter

	// mu serializes read-modify-write cycles against the adapter so a
	// checkpoint append never clobbers a concurrent one.
	mu sync.Mutex

	maxCheckpoints int
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	adapter        store.Adapter
	maxCheckpoints int
}

// WithAdapter sets the persistence backend. Default is in-memory.
func WithAdapter(a store.Adapter) StoreOption {
	return func(c *storeConfig) {
		c.adapter = a
	}
}

// WithMaxCheckpoints caps the number of checkpoints retained per thread.
// Oldest checkpoints are dropped first. Default is 20; 0 disables the cap.
func WithMaxCheckpoints(n int) StoreOption {
	return func(c *storeConfig) {
		c.maxCheckpoints = n
	}
}

// NewStore creates a session store for state type S.
func NewStore[S any](opts ...StoreOption) *Store[S] {
	cfg := storeConfig{maxCheckpoints: 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.adapter == nil {
		cfg.adapter = store.NewMemoryAdapter()
	}
	return &Store[S]{adapter: cfg.adapter, maxCheckpoints: cfg.maxCheckpoints}
}

// CreateThread allocates a new thread ID with an empty session.
func (s *Store[S]) CreateThread(ctx context.Context) (string, error) {
	threadID := "thread-" + uuid.NewString()[:8]
	var zero S
	if err := s.Save(ctx, threadID, &zero); err != nil {
		return "", err
	}
	return threadID, nil
}

// Get returns a copy of the thread's current state. A missing thread is not
// an error: an empty session is created and its zero state returned, so
// callers can treat every thread ID as valid.
func (s *Store[S]) Get(ctx context.Context, threadID string) (*S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		var zero S
		if err := s.save(ctx, threadID, &session{CreatedAt: time.Now(), UpdatedAt: time.Now()}, &zero); err != nil {
			return nil, err
		}
		return &zero, nil
	}

	var state S
	if len(sess.State) > 0 {
		if err := json.Unmarshal(sess.State, &state); err != nil {
			return nil, fmt.Errorf("memory: decode state for thread %q: %w", threadID, err)
		}
	}
	return &state, nil
}

// Save stores the thread's current state, replacing any previous value.
// Concurrent saves resolve last-write-wins.
func (s *Store[S]) Save(ctx context.Context, threadID string, state *S) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(ctx, threadID)
	if err != nil {
		return err
	}
	if !ok {
		sess = &session{CreatedAt: time.Now()}
	}
	sess.UpdatedAt = time.Now()
	return s.save(ctx, threadID, sess, state)
}

// SaveCheckpoint stores the state and appends a checkpoint snapshot of it.
// Returns the checkpoint ID.
func (s *Store[S]) SaveCheckpoint(ctx context.Context, threadID string, state *S, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(ctx, threadID)
	if err != nil {
		return "", err
	}
	if !ok {
		sess = &session{CreatedAt: time.Now()}
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("memory: encode state for thread %q: %w", threadID, err)
	}

	ckpt := Checkpoint{
		ID:        "ckpt-" + uuid.NewString()[:8],
		Label:     label,
		State:     raw,
		CreatedAt: time.Now(),
	}
	sess.Checkpoints = append(sess.Checkpoints, ckpt)
	if s.maxCheckpoints > 0 && len(sess.Checkpoints) > s.maxCheckpoints {
		sess.Checkpoints = sess.Checkpoints[len(sess.Checkpoints)-s.maxCheckpoints:]
	}
	sess.State = raw
	sess.UpdatedAt = time.Now()

	if err := s.persist(ctx, threadID, sess); err != nil {
		return "", err
	}
	return ckpt.ID, nil
}

// Restore returns the state captured by a checkpoint. An empty checkpointID
// selects the most recent checkpoint.
func (s *Store[S]) Restore(ctx context.Context, threadID, checkpointID string) (*S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok || len(sess.Checkpoints) == 0 {
		return nil, ai.NewUserInputError(fmt.Sprintf("memory: no checkpoints for thread %q", threadID), 0, nil)
	}

	var target *Checkpoint
	if checkpointID == "" {
		target = &sess.Checkpoints[len(sess.Checkpoints)-1]
	} else {
		for i := range sess.Checkpoints {
			if sess.Checkpoints[i].ID == checkpointID {
				target = &sess.Checkpoints[i]
				break
			}
		}
	}
	if target == nil {
		return nil, ai.NewUserInputError(fmt.Sprintf("memory: checkpoint %q not found in thread %q", checkpointID, threadID), 0, nil)
	}

	var state S
	if err := json.Unmarshal(target.State, &state); err != nil {
		return nil, fmt.Errorf("memory: decode checkpoint %q: %w", target.ID, err)
	}
	return &state, nil
}

// Checkpoints lists the thread's checkpoints, oldest first.
func (s *Store[S]) Checkpoints(ctx context.Context, threadID string) ([]Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.load(ctx, threadID)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]Checkpoint, len(sess.Checkpoints))
	copy(out, sess.Checkpoints)
	return out, nil
}

// DeleteThread removes a thread's session and checkpoints.
func (s *Store[S]) DeleteThread(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter.Delete(ctx, threadID)
}

// ThreadIDs returns all known thread IDs.
func (s *Store[S]) ThreadIDs(ctx context.Context) ([]string, error) {
	return s.adapter.Keys(ctx)
}

// EvictOlderThan removes sessions whose last update is older than maxAge.
// Returns the number of evicted threads.
func (s *Store[S]) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.adapter.Keys(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for _, id := range ids {
		sess, ok, err := s.load(ctx, id)
		if err != nil {
			return evicted, err
		}
		if !ok {
			continue
		}
		if sess.UpdatedAt.Before(cutoff) {
			if err := s.adapter.Delete(ctx, id); err != nil {
				return evicted, err
			}
			evicted++
		}
	}
	return evicted, nil
}

// Status reports thread and checkpoint counts.
func (s *Store[S]) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.adapter.Keys(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{ThreadCount: len(ids)}
	for _, id := range ids {
		sess, ok, err := s.load(ctx, id)
		if err != nil {
			return st, err
		}
		if ok {
			st.CheckpointCount += len(sess.Checkpoints)
		}
	}
	return st, nil
}

func (s *Store[S]) load(ctx context.Context, threadID string) (*session, bool, error) {
	raw, ok, err := s.adapter.Get(ctx, threadID)
	if err != nil || !ok {
		return nil, false, err
	}
	var sess session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("memory: decode session %q: %w", threadID, err)
	}
	return &sess, true, nil
}

func (s *Store[S]) save(ctx context.Context, threadID string, sess *session, state *S) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("memory: encode state for thread %q: %w", threadID, err)
	}
	sess.State = raw
	return s.persist(ctx, threadID, sess)
}

func (s *Store[S]) persist(ctx context.Context, threadID string, sess *session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("memory: encode session %q: %w", threadID, err)
	}
	return s.adapter.Set(ctx, threadID, raw)
}
