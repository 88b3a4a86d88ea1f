package restaurant

import (
	"math/rand"
	"sync"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
	"github.com/bistrograph/bistrograph/event"
	"github.com/bistrograph/bistrograph/grade"
	"github.com/bistrograph/bistrograph/memory"
	"github.com/bistrograph/bistrograph/retrieve"
	"github.com/bistrograph/bistrograph/rewrite"
	"github.com/bistrograph/bistrograph/store"
	"github.com/bistrograph/bistrograph/tool"
)

const (
	// DefaultQualityThreshold is the minimum judge score for an answer to be
	// accepted without retry.
	DefaultQualityThreshold = 0.7

	// DefaultMaxAttempts bounds the quality-gated retry loop.
	DefaultMaxAttempts = 3

	// DefaultMaxCycles bounds the ReAct reason/act loop.
	DefaultMaxCycles = 5
)

// ErrEmptyQuery rejects blank queries before they reach any engine. It wraps
// ai.ErrEmptyQuery, so errors.Is against the root sentinel matches too.
var ErrEmptyQuery = ai.NewUserInputError("query must not be empty", 0, ai.ErrEmptyQuery)

// Service bundles the collaborators shared by the five flows and exposes one
// entry point per flow. Every entry point returns a structured result with
// failures captured in the state; none panics or leaks a raw model error.
//
// Service is safe for concurrent use. Two concurrent runs against the same
// session or thread key race with last-write-wins semantics.
type Service struct {
	client      chat.Client
	retriever   *retrieve.Retriever
	registry    *tool.Registry
	grader      *grade.Grader
	rewriter    *rewrite.Rewriter
	webSearcher WebSearcher
	adapter     store.Adapter

	ragMemory   *memory.Store[RAGState]
	reactMemory *memory.Store[ReActState]

	threshold   float64
	maxAttempts int
	maxCycles   int
	bestEffort  bool

	events event.Sink

	mu  sync.Mutex
	rng *rand.Rand
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRetriever sets the document retriever. Defaults to an empty index.
func WithRetriever(r *retrieve.Retriever) ServiceOption {
	return func(s *Service) { s.retriever = r }
}

// WithRegistry sets the tool registry used by the agent flows. When not set,
// a registry with search_menu and search_wine over the retriever is built.
func WithRegistry(r *tool.Registry) ServiceOption {
	return func(s *Service) { s.registry = r }
}

// WithWebSearch adds a web_search tool backed by the given searcher to the
// default registry.
func WithWebSearch(w WebSearcher) ServiceOption {
	return func(s *Service) { s.webSearcher = w }
}

// WithQualityThreshold overrides the judge score an answer must reach.
func WithQualityThreshold(t float64) ServiceOption {
	return func(s *Service) { s.threshold = t }
}

// WithMaxAttempts overrides the generation attempt budget of the
// quality-gated flow.
func WithMaxAttempts(n int) ServiceOption {
	return func(s *Service) { s.maxAttempts = n }
}

// WithMaxCycles overrides the ReAct iteration cap.
func WithMaxCycles(n int) ServiceOption {
	return func(s *Service) { s.maxCycles = n }
}

// WithBestEffort makes the quality-gated flow return its best answer as
// COMPLETED when the attempt budget runs out, instead of FAILED.
func WithBestEffort() ServiceOption {
	return func(s *Service) { s.bestEffort = true }
}

// WithEvents sets the sink that receives run/step/tool events.
func WithEvents(sink event.Sink) ServiceOption {
	return func(s *Service) { s.events = sink }
}

// WithRand sets the random source used by the linear flow's preference pick.
// Seed it for reproducible runs.
func WithRand(r *rand.Rand) ServiceOption {
	return func(s *Service) { s.rng = r }
}

// WithSessionAdapter sets the persistence adapter backing session and thread
// memory. Defaults to in-process storage.
func WithSessionAdapter(a store.Adapter) ServiceOption {
	return func(s *Service) { s.adapter = a }
}

// NewService creates a Service around the given chat client.
func NewService(client chat.Client, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		client:      client,
		threshold:   DefaultQualityThreshold,
		maxAttempts: DefaultMaxAttempts,
		maxCycles:   DefaultMaxCycles,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.retriever == nil {
		s.retriever = retrieve.NewRetriever()
	}
	if s.registry == nil {
		s.registry = tool.NewRegistry()
		if err := RegisterSearchTools(s.registry, s.retriever); err != nil {
			return nil, err
		}
		if s.webSearcher != nil {
			if err := RegisterWebSearchTool(s.registry, s.webSearcher); err != nil {
				return nil, err
			}
		}
	}

	if s.adapter == nil {
		s.adapter = store.NewMemoryAdapter()
	}
	// The two stores share the backend but not a key namespace.
	s.ragMemory = memory.NewStore[RAGState](
		memory.WithAdapter(store.NewPrefixAdapter(s.adapter, "rag:")))
	s.reactMemory = memory.NewStore[ReActState](
		memory.WithAdapter(store.NewPrefixAdapter(s.adapter, "react:")))

	s.grader = grade.NewGrader(client)
	s.rewriter = rewrite.NewRewriter(client)

	return s, nil
}

// Memory returns the session store of the quality-gated flow, for status
// inspection and eviction.
func (s *Service) Memory() *memory.Store[RAGState] { return s.ragMemory }

// ThreadMemory returns the thread store of the ReAct flow.
func (s *Service) ThreadMemory() *memory.Store[ReActState] { return s.reactMemory }

// Registry returns the tool registry used by the agent flows.
func (s *Service) Registry() *tool.Registry { return s.registry }

// randIntn draws from the service's random source under the lock; *rand.Rand
// is not safe for concurrent use.
func (s *Service) randIntn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
