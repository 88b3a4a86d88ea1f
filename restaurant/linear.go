package restaurant

import (
	"context"
	"fmt"
	"time"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/workflow"
)

// menuItem is one entry of the fixed recommendation table.
type menuItem struct {
	Name  string
	Price int
}

// preferences are the dining preferences the linear flow picks from. The pick
// is the flow's one intentional source of randomness; seed it through
// WithRand.
var preferences = []string{"육류", "해산물", "채식", "아무거나"}

// menuByPreference maps each preference to today's recommendation.
var menuByPreference = map[string]menuItem{
	"육류":   {Name: "안심 스테이크", Price: 35000},
	"해산물":  {Name: "연어구이", Price: 28000},
	"채식":   {Name: "퀴노아 샐러드", Price: 18000},
	"아무거나": {Name: "오늘의 추천 파스타", Price: 22000},
}

// RunLinear executes the menu recommendation flow: pick a preference, look up
// the matching menu item, and phrase a recommendation. A model failure falls
// back to a canned recommendation; the flow always completes.
func (s *Service) RunLinear(ctx context.Context) (*LinearState, error) {
	state := &LinearState{Stage: StagePending, StartedAt: time.Now()}

	pickPreference := workflow.NewFuncStep("pick_preference", func(ctx context.Context, st *LinearState) error {
		st.Stage = StageAnalyzing
		st.Preference = preferences[s.randIntn(len(preferences))]
		st.Messages = append(st.Messages, ai.NewUserMessage(
			fmt.Sprintf("%s 메뉴를 추천해 주세요.", st.Preference)))
		return nil
	})

	lookupMenu := workflow.NewFuncStep("lookup_menu", func(ctx context.Context, st *LinearState) error {
		st.Stage = StageRetrieving
		item, ok := menuByPreference[st.Preference]
		if !ok {
			item = menuByPreference["아무거나"]
		}
		st.MenuItem = item.Name
		st.Price = item.Price
		return nil
	})

	phrase := workflow.NewFuncStep("phrase_recommendation", func(ctx context.Context, st *LinearState) error {
		st.Stage = StageGenerating
		resp, err := s.client.Chat(ctx, []ai.Message{
			ai.NewSystemMessage(linearPrompt),
			ai.NewUserMessage(fmt.Sprintf("선호: %s\n추천 메뉴: %s (%d원)", st.Preference, st.MenuItem, st.Price)),
		})
		if err != nil || resp.Content == "" {
			st.Answer = fmt.Sprintf(fallbackRecommendation, st.MenuItem, st.Price)
		} else {
			st.Answer = resp.Content
		}
		st.Messages = append(st.Messages, ai.NewAssistantMessage(st.Answer))
		return nil
	})

	chain := workflow.NewChain("menu_recommendation", pickPreference, lookupMenu, phrase)
	result, err := workflow.New("linear", chain).Run(ctx, state, workflow.WithEvents(s.events))
	if err != nil {
		state.Stage = StageFailed
		state.EndedAt = time.Now()
		return state, err
	}

	result.State.Stage = StageCompleted
	result.State.EndedAt = time.Now()
	return result.State, nil
}
