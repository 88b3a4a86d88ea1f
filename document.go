package bistrograph

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies a document in the restaurant corpus.
type DocumentType string

const (
	DocumentTypeMenu    DocumentType = "MENU"
	DocumentTypeWine    DocumentType = "WINE"
	DocumentTypeRecipe  DocumentType = "RECIPE"
	DocumentTypeReview  DocumentType = "REVIEW"
	DocumentTypeGeneral DocumentType = "GENERAL"
)

// DocumentTypes lists every valid document type, in declaration order.
// Used for validation error messages.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeMenu,
		DocumentTypeWine,
		DocumentTypeRecipe,
		DocumentTypeReview,
		DocumentTypeGeneral,
	}
}

// ParseDocumentType converts a string (case-insensitive) to a DocumentType.
// Unknown values return a user-input error listing the valid types.
func ParseDocumentType(s string) (DocumentType, error) {
	dt := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range DocumentTypes() {
		if dt == known {
			return dt, nil
		}
	}
	valid := make([]string, 0, len(DocumentTypes()))
	for _, known := range DocumentTypes() {
		valid = append(valid, string(known))
	}
	return "", NewUserInputError(
		fmt.Sprintf("unknown document type %q, valid types: %s", s, strings.Join(valid, ", ")),
		0, nil,
	)
}

// Document is a unit of retrievable restaurant content.
// Documents are owned by the document store; searches hand out copies so a
// per-query relevance score never leaks between concurrent callers.
type Document struct {
	// ID is the unique, stable identifier of the document.
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Source  string       `json:"source,omitempty"`
	Type    DocumentType `json:"type"`
	// Metadata carries optional source-specific attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
	// RelevanceScore is populated by retrieval and is only meaningful within
	// the query that produced it.
	RelevanceScore *float64  `json:"relevanceScore,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Copy returns a copy of the document with its own relevance-score slot and
// metadata map, safe to hand to a caller.
func (d Document) Copy() Document {
	c := d
	if d.RelevanceScore != nil {
		score := *d.RelevanceScore
		c.RelevanceScore = &score
	}
	if d.Metadata != nil {
		c.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// WithScore returns a copy of the document carrying the given relevance score.
func (d Document) WithScore(score float64) Document {
	c := d.Copy()
	c.RelevanceScore = &score
	return c
}

// Score returns the relevance score, or 0 if none has been assigned.
func (d Document) Score() float64 {
	if d.RelevanceScore == nil {
		return 0
	}
	return *d.RelevanceScore
}

// ContainsKeyword reports whether the keyword appears in the document's title
// or content, case-insensitively.
func (d Document) ContainsKeyword(keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(d.Title), k) ||
		strings.Contains(strings.ToLower(d.Content), k)
}
