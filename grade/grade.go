// Package grade scores generated answers against the question they answer.
// An LLM judge returns a relevance score that quality-gated pipelines use to
// decide whether to retry generation.
package grade

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
)

// DefaultScore is used when the judge's reply cannot be parsed. It sits
// below the usual pass threshold so an unparseable verdict triggers a retry
// rather than a silent pass.
const DefaultScore = 0.6

const systemPrompt = `You are a strict quality evaluator for a restaurant assistant.
Rate how well the answer addresses the question on a scale from 0.0 to 1.0.
Respond in exactly this format:
SCORE: <number between 0.0 and 1.0>
REASON: <one short sentence>`

// Result is the judge's verdict on an answer.
type Result struct {
	// Score is the relevance score, clamped to [0, 1].
	Score float64

	// Reason is the judge's short explanation. When the reply carried no
	// parseable score or reason, it holds the raw reply text instead.
	Reason string
}

// Passed reports whether the score meets the threshold.
func (r Result) Passed(threshold float64) bool {
	return r.Score >= threshold
}

// Grader evaluates answer quality with an LLM judge.
type Grader struct {
	client   chat.Client
	chatOpts []ai.Option
}

// NewGrader creates a grader backed by the given chat client.
func NewGrader(client chat.Client, opts ...ai.Option) *Grader {
	return &Grader{client: client, chatOpts: opts}
}

// Evaluate asks the judge to score the answer against the question.
// Transport errors propagate to the caller; a reply that cannot be parsed
// falls back to DefaultScore instead of failing.
func (g *Grader) Evaluate(ctx context.Context, question, answer string) (Result, error) {
	msgs := []ai.Message{
		ai.NewSystemMessage(systemPrompt),
		ai.NewUserMessage(fmt.Sprintf("Question: %s\n\nAnswer: %s", question, answer)),
	}

	resp, err := g.client.Chat(ctx, msgs, g.chatOpts...)
	if err != nil {
		return Result{}, err
	}

	return Parse(resp.Content), nil
}

// Parse extracts a score and reason from a judge reply. Lines are scanned
// for "SCORE:" and "REASON:" prefixes; a reply with no parseable score
// yields DefaultScore with the raw reply kept as the reason, so the verdict
// stays auditable. Scores outside [0, 1] are clamped.
func Parse(content string) Result {
	result := Result{Score: DefaultScore}

	scored := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := cutPrefixFold(line, "SCORE:"); ok {
			if score, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
				result.Score = clamp(score)
				scored = true
			}
		} else if rest, ok := cutPrefixFold(line, "REASON:"); ok {
			result.Reason = strings.TrimSpace(rest)
		}
	}
	if !scored && result.Reason == "" {
		result.Reason = "unparseable judge reply: " + strings.TrimSpace(content)
	}
	return result
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
