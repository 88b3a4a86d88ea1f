package retrieve

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	ai "github.com/bistrograph/bistrograph"
)

// numberedPrefix matches list numbering like "1. " or "12) " at line start.
var numberedPrefix = regexp.MustCompile(`^\d+[.)]\s*`)

const maxTitleRunes = 50

// LoadFile reads documents from a text file and indexes them. Items are
// separated by blank lines; the first line of each item becomes the title
// (numbering stripped, truncated to 50 runes) and the whole item is the
// content. All loaded documents get the given type and the file path as
// source. Returns the number of documents added.
func (r *Retriever) LoadFile(path string, docType ai.DocumentType) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("retrieve: load %s: %w", path, err)
	}

	added := 0
	for _, block := range splitBlocks(string(data)) {
		r.Add(ai.Document{
			Title:   blockTitle(block),
			Content: block,
			Source:  path,
			Type:    docType,
		})
		added++
	}
	return added, nil
}

// splitBlocks splits text into trimmed blocks separated by blank lines.
func splitBlocks(text string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()
	return blocks
}

// blockTitle derives a title from the block's first line.
func blockTitle(block string) string {
	title := block
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		title = block[:i]
	}
	title = numberedPrefix.ReplaceAllString(strings.TrimSpace(title), "")

	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	return title
}
