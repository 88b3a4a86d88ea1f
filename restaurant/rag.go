package restaurant

import (
	"context"
	"errors"
	"fmt"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/event"
	"github.com/bistrograph/bistrograph/rewrite"
	"github.com/bistrograph/bistrograph/workflow"
)

// FailureMaxAttempts is the reason recorded when the quality-gated loop
// exhausts its attempt budget without reaching the threshold.
const FailureMaxAttempts = "max attempts reached, quality threshold not met"

// gradeTransportFallback is the score recorded when the judge itself is
// unreachable, distinct from the parse-failure fallback in the grade package.
const gradeTransportFallback = 0.5

// RunQualityGatedRAG executes retrieval-augmented generation gated by an LLM
// judge. The {retrieve, generate, grade} cycle repeats, with a query
// improvement pass before each retry, until the judge's score reaches the
// quality threshold or the attempt budget runs out. Session state is loaded
// from and persisted to memory under sessionID; pass an empty sessionID to
// start a fresh session.
//
// Budget exhaustion is a normal terminal state, not an error: the returned
// state is FAILED with FailureReason set, or COMPLETED with the best answer
// so far when the service runs in best-effort mode.
func (s *Service) RunQualityGatedRAG(ctx context.Context, query, sessionID string) (*RAGState, error) {
	if isBlank(query) {
		return nil, ErrEmptyQuery
	}

	if sessionID == "" {
		id, err := s.ragMemory.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = id
	}

	state, err := s.ragMemory.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Per-run fields reset; Messages carry over across runs of the session.
	state.OriginalInput = query
	state.WorkingQuery = query
	state.SessionKey = sessionID
	state.MaxAttempts = s.maxAttempts
	state.Attempts = 0
	state.Documents = nil
	state.RelevantDocuments = nil
	state.Answer = ""
	state.QualityScore = nil
	state.GradeReason = ""
	state.FailureReason = ""
	state.Stage = StagePending
	state.StartedAt = time.Now()
	state.Messages = append(state.Messages, ai.NewUserMessage(query))

	analyze := workflow.NewFuncStep("analyze_query", s.analyzeQuery)
	cycle := workflow.NewChain("rag_cycle",
		workflow.NewFuncStep("improve_query", s.improveQuery),
		workflow.NewFuncStep("retrieve", s.retrieveDocuments),
		workflow.NewFuncStep("generate", s.generateAnswer),
		workflow.NewFuncStep("grade", s.gradeAnswer),
	)
	loop := workflow.NewLoop("quality_gate", cycle,
		func(ctx context.Context, st *RAGState) bool {
			return st.BestScore() >= s.threshold
		},
		workflow.WithMaxIterations(s.maxAttempts),
	)

	chain := workflow.NewChain("quality_gated_rag", analyze, loop)
	_, err = workflow.New("rag", chain).Run(ctx, state, workflow.WithEvents(s.events))

	switch {
	case err == nil:
		state.Stage = StageCompleted
	case errors.Is(err, workflow.ErrMaxIterationsExceeded):
		if s.bestEffort && state.Answer != "" {
			state.Stage = StageCompleted
		} else {
			state.Stage = StageFailed
			state.FailureReason = FailureMaxAttempts
		}
	default:
		state.Stage = StageFailed
		state.FailureReason = err.Error()
	}
	state.EndedAt = time.Now()

	if state.Answer != "" {
		state.Messages = append(state.Messages, ai.NewAssistantMessage(state.Answer))
	}

	if saveErr := s.ragMemory.Save(ctx, sessionID, state); saveErr != nil {
		return state, saveErr
	}
	if ckptID, ckptErr := s.ragMemory.SaveCheckpoint(ctx, sessionID, state, string(state.Stage)); ckptErr == nil {
		event.Emit(s.events, event.Event{Type: event.CheckpointSaved, Message: ckptID})
	}

	return state, nil
}

// analyzeQuery classifies the question's intent and reformulates the working
// query. Rewriting is best effort; the original query survives any failure.
func (s *Service) analyzeQuery(ctx context.Context, st *RAGState) error {
	st.Stage = StageAnalyzing
	st.Intent = rewrite.ClassifyIntent(st.OriginalInput)

	rewritten, err := s.rewriter.Rewrite(ctx, st.OriginalInput)
	if err == nil && rewritten != "" {
		st.WorkingQuery = rewritten
	}
	return nil
}

// improveQuery runs before each retry attempt, feeding the judge's critique
// back into a fresh query reformulation. The first iteration is a no-op.
func (s *Service) improveQuery(ctx context.Context, st *RAGState) error {
	if st.Attempts == 0 {
		return nil
	}
	st.Stage = StageRewriting

	hint := st.WorkingQuery
	if st.GradeReason != "" {
		hint = fmt.Sprintf("%s (이전 답변의 문제점: %s)", st.WorkingQuery, st.GradeReason)
	}
	rewritten, err := s.rewriter.Rewrite(ctx, hint)
	if err == nil && rewritten != "" && rewritten != hint {
		st.WorkingQuery = rewritten
	}
	return nil
}

// retrieveDocuments rebuilds RelevantDocuments from a TF-IDF pass over the
// working query, supplemented by exact keyword matches on the original input.
// Every hit also lands in the append-only Documents log.
func (s *Service) retrieveDocuments(ctx context.Context, st *RAGState) error {
	st.Stage = StageRetrieving

	var docs []ai.Document
	switch st.Intent {
	case rewrite.IntentWine:
		docs = s.retriever.SearchByType(st.WorkingQuery, ai.DocumentTypeWine, 3)
	case rewrite.IntentMenu, rewrite.IntentPrice:
		docs = s.retriever.SearchByType(st.WorkingQuery, ai.DocumentTypeMenu, 3)
	default:
		docs = s.retriever.Search(st.WorkingQuery, 3)
	}
	if len(docs) == 0 {
		docs = s.retriever.QuickSearch(st.OriginalInput, 3)
	}

	seen := make(map[string]bool, len(st.Documents))
	for _, d := range st.Documents {
		seen[d.ID] = true
	}
	for _, d := range docs {
		if !seen[d.ID] {
			st.Documents = append(st.Documents, d)
			seen[d.ID] = true
		}
	}
	st.RelevantDocuments = docs
	return nil
}

// generateAnswer produces an answer from the relevant documents. It counts
// one attempt regardless of how grading goes, and falls back to a canned
// answer when the model is unreachable.
func (s *Service) generateAnswer(ctx context.Context, st *RAGState) error {
	st.Stage = StageGenerating

	user := st.OriginalInput
	if len(st.RelevantDocuments) > 0 {
		user = "메뉴 정보:\n" + FormatDocuments(st.RelevantDocuments) + "\n\n질문: " + st.OriginalInput
	}
	st.Answer = s.generateOrFallback(ctx, menuAnswerPrompt, user)
	st.Attempts++
	return nil
}

// gradeAnswer asks the judge to score the answer. An unreachable judge
// records the transport fallback score instead of failing the run.
func (s *Service) gradeAnswer(ctx context.Context, st *RAGState) error {
	st.Stage = StageGrading

	result, err := s.grader.Evaluate(ctx, st.OriginalInput, st.Answer)
	if err != nil {
		score := gradeTransportFallback
		st.QualityScore = &score
		st.GradeReason = fmt.Sprintf("grader unreachable: %v", err)
		return nil
	}
	st.QualityScore = &result.Score
	st.GradeReason = result.Reason
	return nil
}
