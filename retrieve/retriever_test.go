package retrieve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/bistrograph/bistrograph"
)

func menuRetriever(t *testing.T) *Retriever {
	t.Helper()
	r := NewRetriever()
	r.Add(ai.Document{ID: "steak", Title: "안심 스테이크", Content: "부드러운 안심 스테이크 소고기 요리 35000원", Type: ai.DocumentTypeMenu})
	r.Add(ai.Document{ID: "salmon", Title: "연어구이", Content: "노르웨이산 연어구이 해산물 요리 28000원", Type: ai.DocumentTypeMenu})
	r.Add(ai.Document{ID: "salad", Title: "퀴노아 샐러드", Content: "신선한 퀴노아 샐러드 채식 요리 18000원", Type: ai.DocumentTypeMenu})
	r.Add(ai.Document{ID: "red", Title: "레드 와인", Content: "스테이크 와 어울리는 레드 와인", Type: ai.DocumentTypeWine})
	return r
}

func TestRetrieverSearch(t *testing.T) {
	r := menuRetriever(t)

	t.Run("ranks matching documents first", func(t *testing.T) {
		results := r.Search("연어구이 해산물", 3)
		require.NotEmpty(t, results)
		assert.Equal(t, "salmon", results[0].ID)
	})

	t.Run("respects topK", func(t *testing.T) {
		results := r.Search("요리", 2)
		assert.LessOrEqual(t, len(results), 2)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, r.Search("피자", 3))
	})

	t.Run("empty query returns empty", func(t *testing.T) {
		assert.Empty(t, r.Search("", 3))
		assert.Empty(t, r.Search("!!!", 3))
	})

	t.Run("results carry relevance scores", func(t *testing.T) {
		results := r.Search("스테이크", 3)
		require.NotEmpty(t, results)
		for _, doc := range results {
			assert.Positive(t, doc.Score())
		}
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score(), results[i].Score())
		}
	})

	t.Run("single document round-trips its own tokens", func(t *testing.T) {
		// With one document every term has IDF ln(1/1) = 0; the match must
		// still be returned.
		solo := NewRetriever()
		id := solo.Add(ai.Document{Title: "안심 스테이크", Content: "부드러운 안심 스테이크 소고기 요리", Type: ai.DocumentTypeMenu})

		results := solo.Search("스테이크", 3)
		require.Len(t, results, 1)
		assert.Equal(t, id, results[0].ID)
	})

	t.Run("universal term matches every document", func(t *testing.T) {
		// "요리" appears in all three menu documents, so its IDF is 0 against
		// a menu-only index; all of them are still candidates.
		menuOnly := NewRetriever()
		menuOnly.Add(ai.Document{ID: "steak", Title: "안심 스테이크", Content: "소고기 요리", Type: ai.DocumentTypeMenu})
		menuOnly.Add(ai.Document{ID: "salmon", Title: "연어구이", Content: "해산물 요리", Type: ai.DocumentTypeMenu})
		menuOnly.Add(ai.Document{ID: "salad", Title: "샐러드", Content: "채식 요리", Type: ai.DocumentTypeMenu})

		results := menuOnly.Search("요리", 5)
		assert.Len(t, results, 3)
	})

	t.Run("results are copies", func(t *testing.T) {
		results := r.Search("스테이크", 1)
		require.NotEmpty(t, results)
		results[0].Title = "mutated"

		again, err := r.Get(results[0].ID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Title)
	})
}

func TestRetrieverSearchByType(t *testing.T) {
	r := menuRetriever(t)

	results := r.SearchByType("스테이크", ai.DocumentTypeWine, 3)
	require.Len(t, results, 1)
	assert.Equal(t, "red", results[0].ID)
}

func TestRetrieverFindSimilar(t *testing.T) {
	r := menuRetriever(t)

	t.Run("excludes the seed document", func(t *testing.T) {
		results, err := r.FindSimilar("steak", 3)
		require.NoError(t, err)
		for _, doc := range results {
			assert.NotEqual(t, "steak", doc.ID)
		}
		require.NotEmpty(t, results)
	})

	t.Run("unknown document errors", func(t *testing.T) {
		_, err := r.FindSimilar("nope", 3)
		require.Error(t, err)
		assert.True(t, ai.IsUserInput(err))
	})
}

func TestRetrieverQuickSearch(t *testing.T) {
	r := menuRetriever(t)

	results := r.QuickSearch("와인", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "red", results[0].ID)

	assert.Empty(t, r.QuickSearch("피자", 5))
}

func TestRetrieverCounts(t *testing.T) {
	r := menuRetriever(t)

	assert.Equal(t, 4, r.Count())
	counts := r.CountByType()
	assert.Equal(t, 3, counts[ai.DocumentTypeMenu])
	assert.Equal(t, 1, counts[ai.DocumentTypeWine])

	status := r.Status()
	assert.Equal(t, 4, status.Documents)
	assert.Positive(t, status.Terms)
}

func TestLoadFile(t *testing.T) {
	content := "1. 안심 스테이크\n부드러운 안심 스테이크입니다. 가격은 35,000원입니다.\n\n2. 연어구이\n노르웨이산 연어를 사용합니다.\n\n"
	path := filepath.Join(t.TempDir(), "menu.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewRetriever()
	n, err := r.LoadFile(path, ai.DocumentTypeMenu)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, r.Count())

	results := r.Search("연어구이", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "연어구이", results[0].Title)
	assert.Equal(t, path, results[0].Source)
	assert.Equal(t, ai.DocumentTypeMenu, results[0].Type)

	t.Run("missing file errors", func(t *testing.T) {
		_, err := r.LoadFile(filepath.Join(t.TempDir(), "absent.txt"), ai.DocumentTypeMenu)
		assert.Error(t, err)
	})
}
