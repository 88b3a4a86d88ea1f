// Package retrieve implements in-memory document retrieval with TF-IDF
// ranking. It backs the RAG pipelines with restaurant knowledge documents
// and needs no external search infrastructure.
package retrieve

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	ai "github.com/bistrograph/bistrograph"
)

// Retriever indexes documents and ranks them against queries with TF-IDF.
// All methods are safe for concurrent use.
type Retriever struct {
	mu sync.RWMutex

	docs  map[string]ai.Document
	order []string

	// inverted maps term -> docID -> term frequency in that document.
	inverted map[string]map[string]int
}

// NewRetriever creates an empty retriever.
func NewRetriever() *Retriever {
	return &Retriever{
		docs:     make(map[string]ai.Document),
		inverted: make(map[string]map[string]int),
	}
}

// Add indexes a document. A document without an ID is assigned one.
// Re-adding an existing ID replaces the previous version.
func (r *Retriever) Add(doc ai.Document) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID == "" {
		doc.ID = "doc-" + uuid.NewString()[:8]
	}

	if _, exists := r.docs[doc.ID]; exists {
		r.removeFromIndex(doc.ID)
	} else {
		r.order = append(r.order, doc.ID)
	}

	r.docs[doc.ID] = doc

	tokens := Tokenize(doc.Title + " " + doc.Content)
	freqs := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freqs[tok]++
	}
	for term, n := range freqs {
		postings, ok := r.inverted[term]
		if !ok {
			postings = make(map[string]int)
			r.inverted[term] = postings
		}
		postings[doc.ID] = n
	}

	return doc.ID
}

// Get returns a copy of the document, or an error if it is unknown.
func (r *Retriever) Get(id string) (ai.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return ai.Document{}, ai.NewUserInputError(fmt.Sprintf("retrieve: document %q not found", id), 0, nil)
	}
	return doc.Copy(), nil
}

// Search returns up to topK documents ranked by TF-IDF relevance to the
// query, best first. Only documents sharing at least one term with the query
// are candidates; ties keep insertion order.
func (r *Retriever) Search(query string, topK int) []ai.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.search(query, topK, nil)
}

// SearchByType behaves like Search restricted to documents of the given type.
func (r *Retriever) SearchByType(query string, docType ai.DocumentType, topK int) []ai.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.search(query, topK, func(d *ai.Document) bool {
		return d.Type == docType
	})
}

// FindSimilar ranks other documents against the given document's content.
// The seed document itself is never returned.
func (r *Retriever) FindSimilar(id string, topK int) ([]ai.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seed, ok := r.docs[id]
	if !ok {
		return nil, ai.NewUserInputError(fmt.Sprintf("retrieve: document %q not found", id), 0, nil)
	}

	results := r.search(seed.Title+" "+seed.Content, topK+1, func(d *ai.Document) bool {
		return d.ID != id
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// QuickSearch returns documents whose title or content contains the keyword,
// case-insensitively, in insertion order. No ranking is applied.
func (r *Retriever) QuickSearch(keyword string, topK int) []ai.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(keyword)
	var out []ai.Document
	for _, id := range r.order {
		doc := r.docs[id]
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) {
			out = append(out, doc.Copy())
			if topK > 0 && len(out) >= topK {
				break
			}
		}
	}
	return out
}

// Count returns the number of indexed documents.
func (r *Retriever) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// CountByType returns the number of indexed documents per type.
func (r *Retriever) CountByType() map[ai.DocumentType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[ai.DocumentType]int)
	for _, doc := range r.docs {
		counts[doc.Type]++
	}
	return counts
}

// IndexStatus summarizes the index contents.
type IndexStatus struct {
	Documents int
	Terms     int
}

// Status reports the index size.
func (r *Retriever) Status() IndexStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return IndexStatus{Documents: len(r.docs), Terms: len(r.inverted)}
}

// search holds r.mu (read) while called.
func (r *Retriever) search(query string, topK int, keep func(*ai.Document) bool) []ai.Document {
	if topK <= 0 {
		return nil
	}

	terms := Tokenize(query)
	if len(terms) == 0 || len(r.docs) == 0 {
		return nil
	}

	n := float64(len(r.docs))
	scores := make(map[string]float64)

	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true

		postings := r.inverted[term]
		if len(postings) == 0 {
			// Term matches nothing; contributes no score.
			continue
		}
		idf := math.Log(n / float64(len(postings)))
		for docID, tf := range postings {
			scores[docID] += float64(tf) * idf
		}
	}

	// Candidates in insertion order so equal scores sort deterministically.
	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(scores))
	for _, id := range r.order {
		// A zero score still means the document matched a term; a universal
		// term has IDF 0 but the document must stay a candidate.
		score, ok := scores[id]
		if !ok {
			continue
		}
		doc := r.docs[id]
		if keep != nil && !keep(&doc) {
			continue
		}
		candidates = append(candidates, scored{id: id, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]ai.Document, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, r.docs[c.id].WithScore(c.score))
	}
	return out
}

// removeFromIndex holds r.mu (write) while called.
func (r *Retriever) removeFromIndex(id string) {
	for term, postings := range r.inverted {
		delete(postings, id)
		if len(postings) == 0 {
			delete(r.inverted, term)
		}
	}
}
