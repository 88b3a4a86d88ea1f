// Package rewrite improves retrieval queries before they hit the document
// index. A keyword pass classifies the question's intent, then an LLM
// reformulates the query with that intent as a hint. Rewriting is best
// effort: any failure falls back to the original query.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
)

// Intent is the coarse topic of a question, derived from keywords.
type Intent string

const (
	IntentMenu           Intent = "menu"
	IntentWine           Intent = "wine"
	IntentPrice          Intent = "price"
	IntentRecommendation Intent = "recommendation"
	IntentGeneral        Intent = "general"
)

var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentWine, []string{"와인", "wine", "음료", "페어링", "pairing"}},
	{IntentPrice, []string{"가격", "얼마", "비싸", "price", "cost"}},
	{IntentRecommendation, []string{"추천", "뭐가 좋", "recommend", "suggest"}},
	{IntentMenu, []string{"메뉴", "음식", "요리", "먹을", "menu", "food", "dish"}},
}

// ClassifyIntent derives the question's intent from keywords.
// Categories are checked in a fixed order; the first hit wins and
// unmatched questions are general.
func ClassifyIntent(query string) Intent {
	lower := strings.ToLower(query)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent
			}
		}
	}
	return IntentGeneral
}

const rewritePrompt = `You rewrite restaurant customer questions into concise search queries.
The question's topic is: %s.
Reply in exactly this format:
REWRITTEN_QUERY: <the improved search query>`

// Rewriter reformulates queries with an LLM.
type Rewriter struct {
	client   chat.Client
	chatOpts []ai.Option
}

// NewRewriter creates a rewriter backed by the given chat client.
func NewRewriter(client chat.Client, opts ...ai.Option) *Rewriter {
	return &Rewriter{client: client, chatOpts: opts}
}

// Rewrite returns an improved search query for the question. The original
// query is returned unchanged when the model fails or replies off-protocol;
// the error is non-nil only for transport failures so callers can log it
// while still proceeding with the fallback.
func (r *Rewriter) Rewrite(ctx context.Context, query string) (string, error) {
	intent := ClassifyIntent(query)

	msgs := []ai.Message{
		ai.NewSystemMessage(fmt.Sprintf(rewritePrompt, intent)),
		ai.NewUserMessage(query),
	}

	resp, err := r.client.Chat(ctx, msgs, r.chatOpts...)
	if err != nil {
		return query, err
	}

	if rewritten, ok := parseRewritten(resp.Content); ok {
		return rewritten, nil
	}
	return query, nil
}

func parseRewritten(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		const prefix = "REWRITTEN_QUERY:"
		if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
			rewritten := strings.TrimSpace(line[len(prefix):])
			if rewritten != "" {
				return rewritten, true
			}
		}
	}
	return "", false
}
