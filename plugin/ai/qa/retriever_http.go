package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPRetriever talks to an external document search service over JSON.
// The service owns ingestion, chunking and embeddings; this client only
// calls its search endpoint.
type HTTPRetriever struct {
	baseURL string
	client  *http.Client
}

var _ Retriever = (*HTTPRetriever)(nil)

// NewHTTPRetriever creates a retriever client for the given base URL.
func NewHTTPRetriever(baseURL string) *HTTPRetriever {
	return &HTTPRetriever{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Passages []Passage `json:"passages"`
}

// Search posts the query to {base}/search.
func (r *HTTPRetriever) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, errors.Wrap(err, "encode search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}
	return parsed.Passages, nil
}

// NoopRetriever is wired when no retrieval service is configured; every
// question resolves to the not-found guard.
type NoopRetriever struct{}

var _ Retriever = (*NoopRetriever)(nil)

func (NoopRetriever) Search(context.Context, string, int) ([]Passage, error) {
	return nil, nil
}
