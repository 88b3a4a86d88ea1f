package retrieve

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// nonToken strips everything that is not hangul, latin lowercase, a digit or
// whitespace. Input is case-folded first, so uppercase latin never survives.
var nonToken = regexp.MustCompile(`[^가-힣a-z0-9\s]`)

// Tokenize normalizes text into index terms: case-folded, punctuation
// stripped, split on whitespace. Tokens shorter than two runes are dropped
// since single characters carry almost no signal in either Korean or English.
func Tokenize(text string) []string {
	cleaned := nonToken.ReplaceAllString(strings.ToLower(text), "")

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
