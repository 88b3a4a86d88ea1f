package restaurant

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/retrieve"
	"github.com/bistrograph/bistrograph/tool"
)

// NoMenuResults is the sentinel returned by the search tools when nothing
// matched, so the model sees an explicit miss instead of an empty string.
const NoMenuResults = "관련 메뉴 정보를 찾을 수 없습니다"

// toolResultLimit caps how many documents a search tool returns. Tool
// observations feed straight into prompts, so keep them short.
const toolResultLimit = 2

type searchArgs struct {
	Query string `json:"query" desc:"Search keywords, e.g. a dish or wine name" required:"true"`
}

// RegisterSearchTools registers the search_menu and search_wine tools backed
// by the given retriever.
func RegisterSearchTools(registry *tool.Registry, r *retrieve.Retriever) error {
	search := func(docType ai.DocumentType) tool.TypedHandler[searchArgs] {
		return func(ctx context.Context, args searchArgs) (string, error) {
			docs := r.SearchByType(args.Query, docType, toolResultLimit)
			if len(docs) == 0 {
				// Exact-keyword fallback, kept within the tool's document type.
				for _, d := range r.QuickSearch(args.Query, 0) {
					if d.Type == docType {
						docs = append(docs, d)
					}
					if len(docs) == toolResultLimit {
						break
					}
				}
			}
			if len(docs) == 0 {
				return NoMenuResults, nil
			}
			return FormatDocuments(docs), nil
		}
	}

	if err := tool.RegisterFunc(registry, "search_menu",
		"레스토랑 메뉴를 검색합니다. 요리 이름이나 재료로 검색하세요.",
		search(ai.DocumentTypeMenu)); err != nil {
		return err
	}
	return tool.RegisterFunc(registry, "search_wine",
		"레스토랑 와인 리스트를 검색합니다. 와인 이름이나 어울리는 요리로 검색하세요.",
		search(ai.DocumentTypeWine))
}

// WebSearcher looks up live information outside the local index. Implemented
// by websearch.TavilyClient.
type WebSearcher interface {
	SearchFormatted(ctx context.Context, query string, maxResults int) (string, error)
}

// RegisterWebSearchTool registers a web_search tool backed by an external
// search service. Search failures become tool errors the model can recover
// from, never run failures.
func RegisterWebSearchTool(registry *tool.Registry, searcher WebSearcher) error {
	return tool.RegisterFunc(registry, "web_search",
		"웹에서 최신 정보를 검색합니다. 레스토랑 메뉴에 없는 일반 정보에 사용하세요.",
		func(ctx context.Context, args searchArgs) (string, error) {
			return searcher.SearchFormatted(ctx, args.Query, 3)
		})
}

// FormatDocuments renders documents as numbered plain text for prompts and
// tool observations.
func FormatDocuments(docs []ai.Document) string {
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, d.Title, d.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
