package restaurant

import (
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/rewrite"
)

// Stage tags a state's position in its pipeline. It exists for observability
// and reporting only; control flow is driven by routers and loop conditions,
// never by inspecting the stage.
type Stage string

const (
	StagePending    Stage = "PENDING"
	StageAnalyzing  Stage = "ANALYZING"
	StageRetrieving Stage = "RETRIEVING"
	StageGenerating Stage = "GENERATING"
	StageGrading    Stage = "GRADING"
	StageRewriting  Stage = "REWRITING"
	StageReasoning  Stage = "REASONING"
	StageActing     Stage = "ACTING"

	// Terminal stages. No further state mutation happens within a run once
	// one of these is reached.
	StageCompleted     Stage = "COMPLETED"
	StageFailed        Stage = "FAILED"
	StageMaxIterations Stage = "MAX_ITERATIONS_REACHED"
)

// Terminal reports whether the stage ends a run.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed || s == StageMaxIterations
}

// LinearState carries the menu recommendation flow.
type LinearState struct {
	// Preference is the dining preference chosen for this run.
	Preference string `json:"preference"`
	// MenuItem and Price are the looked-up recommendation.
	MenuItem string `json:"menuItem"`
	Price    int    `json:"price"`
	// Answer is the final recommendation text.
	Answer    string       `json:"answer"`
	Messages  []ai.Message `json:"messages"`
	Stage     Stage        `json:"stage"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   time.Time    `json:"endedAt"`
}

// RoutedState carries the conditional question-answering flow.
type RoutedState struct {
	// OriginalInput is the user's query, set once at creation.
	OriginalInput string `json:"originalInput"`
	// IsMenuRelated is the analysis verdict that drives routing.
	IsMenuRelated bool `json:"isMenuRelated"`
	// Documents holds retrieval results for the menu-related branch.
	Documents     []ai.Document `json:"documents,omitempty"`
	Answer        string        `json:"answer"`
	Stage         Stage         `json:"stage"`
	FailureReason string        `json:"failureReason,omitempty"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       time.Time     `json:"endedAt"`
}

// RAGState carries the quality-gated retrieval flow. It is the session state
// persisted between runs of the same session key.
type RAGState struct {
	// OriginalInput is the user's query, set once per run.
	OriginalInput string `json:"originalInput"`
	// WorkingQuery is the possibly rewritten retrieval query.
	WorkingQuery string `json:"workingQuery"`
	// Intent is the keyword-derived topic of the question.
	Intent rewrite.Intent `json:"intent,omitempty"`
	// Messages is the append-only conversation log across runs.
	Messages []ai.Message `json:"messages"`
	// Documents accumulates every retrieval hit within a run.
	Documents []ai.Document `json:"documents,omitempty"`
	// RelevantDocuments is the filtered subset fed to generation, rebuilt on
	// each retrieval pass. Every entry's ID also appears in Documents.
	RelevantDocuments []ai.Document `json:"relevantDocuments,omitempty"`
	// Answer is the latest generated answer, overwritten on each attempt.
	Answer string `json:"answer"`
	// QualityScore is the judge's verdict on Answer, in [0, 1].
	QualityScore *float64 `json:"qualityScore,omitempty"`
	GradeReason  string   `json:"gradeReason,omitempty"`
	// Attempts counts generation attempts; it never exceeds MaxAttempts.
	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"maxAttempts"`

	Stage         Stage     `json:"stage"`
	SessionKey    string    `json:"sessionKey,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
}

// BestScore returns the quality score, or 0 when none was recorded.
func (s *RAGState) BestScore() float64 {
	if s.QualityScore == nil {
		return 0
	}
	return *s.QualityScore
}

// ReActState carries the reasoning/acting agent. It is the thread state
// persisted (and checkpointed per cycle) between runs of the same thread.
type ReActState struct {
	OriginalInput string `json:"originalInput"`
	ThreadID      string `json:"threadId,omitempty"`
	// Messages is the append-only conversation log, including reasoning
	// output and tool observations.
	Messages []ai.Message `json:"messages"`
	// ToolCalls records every tool invocation with its full lifecycle.
	ToolCalls []*ai.ToolCallRecord `json:"toolCalls,omitempty"`
	// Iterations counts completed reason/act cycles.
	Iterations    int       `json:"iterations"`
	FinalAnswer   string    `json:"finalAnswer"`
	Stage         Stage     `json:"stage"`
	FailureReason string    `json:"failureReason,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
}
