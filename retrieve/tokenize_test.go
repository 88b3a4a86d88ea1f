package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Run("case folds and splits", func(t *testing.T) {
		assert.Equal(t, []string{"steak", "wine"}, Tokenize("Steak WINE"))
	})

	t.Run("strips punctuation", func(t *testing.T) {
		assert.Equal(t, []string{"오늘의", "추천", "메뉴는"}, Tokenize("오늘의 추천! 메뉴는?"))
	})

	t.Run("drops single-rune tokens", func(t *testing.T) {
		assert.Equal(t, []string{"ab", "소고기"}, Tokenize("a ab 소고기 b"))
	})

	t.Run("keeps digits", func(t *testing.T) {
		assert.Equal(t, []string{"35000원"}, Tokenize("35,000원"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("  !@# "))
	})
}
