// Package qa answers questions against the private document corpus:
// retrieve, guard on similarity, generate, and report sources.
package qa

import (
	"context"
)

// Passage is one retrieved chunk ranked by similarity.
type Passage struct {
	Ref     string  `json:"ref"`     // document reference, e.g. "handbook.pdf#12"
	Content string  `json:"content"` // chunk text
	Score   float64 `json:"score"`   // similarity in [0, 1], higher is closer
}

// Retriever is the retrieval collaborator. Ingestion, chunking and
// embeddings live behind it.
type Retriever interface {
	// Search returns the topK passages most similar to the query,
	// best first.
	Search(ctx context.Context, query string, topK int) ([]Passage, error)
}

// Source identifies a passage actually used to compose an answer.
type Source struct {
	Ref     string `json:"ref"`
	Snippet string `json:"snippet"`
}

// Answer is the orchestrator's reply to one question.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}
