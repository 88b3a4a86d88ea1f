package restaurant

import (
	"context"
	"strings"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/workflow"
)

// RunRouted executes the conditional question-answering flow. An analysis
// step classifies the query as menu-related or general; a router then sends
// menu questions through retrieval-backed generation and everything else
// through plain generation. Exactly one branch runs, chosen once.
func (s *Service) RunRouted(ctx context.Context, query string) (*RoutedState, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	state := &RoutedState{
		OriginalInput: query,
		Stage:         StagePending,
		StartedAt:     time.Now(),
	}

	analyze := workflow.NewFuncStep("analyze_query", func(ctx context.Context, st *RoutedState) error {
		st.Stage = StageAnalyzing
		resp, err := s.client.Chat(ctx, []ai.Message{
			ai.NewSystemMessage(analyzePrompt),
			ai.NewUserMessage(st.OriginalInput),
		})
		if err != nil {
			// Classification is best effort. When in doubt, retrieval can
			// only help, so treat the query as menu-related.
			st.IsMenuRelated = true
			return nil
		}
		st.IsMenuRelated = strings.Contains(strings.ToUpper(resp.Content), "YES")
		return nil
	})

	menuPath := workflow.NewChain("menu_path",
		workflow.NewFuncStep("retrieve", func(ctx context.Context, st *RoutedState) error {
			st.Stage = StageRetrieving
			st.Documents = s.retriever.Search(st.OriginalInput, 3)
			return nil
		}),
		workflow.NewFuncStep("generate_with_context", func(ctx context.Context, st *RoutedState) error {
			st.Stage = StageGenerating
			user := st.OriginalInput
			if len(st.Documents) > 0 {
				user = "메뉴 정보:\n" + FormatDocuments(st.Documents) + "\n\n질문: " + st.OriginalInput
			}
			st.Answer = s.generateOrFallback(ctx, menuAnswerPrompt, user)
			return nil
		}),
	)

	generalPath := workflow.NewFuncStep("generate_general", func(ctx context.Context, st *RoutedState) error {
		st.Stage = StageGenerating
		st.Answer = s.generateOrFallback(ctx, generalAnswerPrompt, st.OriginalInput)
		return nil
	})

	router := workflow.NewRouter("answer_router",
		[]workflow.Route[RoutedState]{
			{
				Name:      "menu",
				Condition: func(ctx context.Context, st *RoutedState) bool { return st.IsMenuRelated },
				Step:      menuPath,
			},
		},
		generalPath,
	)

	chain := workflow.NewChain("routed_qa", analyze, router)
	result, err := workflow.New("routed", chain).Run(ctx, state, workflow.WithEvents(s.events))
	if err != nil {
		state.Stage = StageFailed
		state.FailureReason = err.Error()
		state.EndedAt = time.Now()
		return state, nil
	}

	result.State.Stage = StageCompleted
	result.State.EndedAt = time.Now()
	return result.State, nil
}

// generateOrFallback asks the model for an answer and substitutes the canned
// fallback on transport failure or empty output. A generator failure never
// leaves the caller without text.
func (s *Service) generateOrFallback(ctx context.Context, system, user string) string {
	resp, err := s.client.Chat(ctx, []ai.Message{
		ai.NewSystemMessage(system),
		ai.NewUserMessage(user),
	})
	if err != nil || resp.Content == "" {
		return fallbackAnswer
	}
	return resp.Content
}
