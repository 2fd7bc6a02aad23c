package qa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRetriever_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "opening hours", req.Query)
		assert.Equal(t, 4, req.TopK)

		json.NewEncoder(w).Encode(searchResponse{Passages: []Passage{
			{Ref: "doc#1", Content: "9-5 weekdays", Score: 0.8},
		}})
	}))
	defer srv.Close()

	passages, err := NewHTTPRetriever(srv.URL).Search(context.Background(), "opening hours", 4)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "doc#1", passages[0].Ref)
}

func TestHTTPRetriever_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPRetriever(srv.URL).Search(context.Background(), "q", 4)
	assert.Error(t, err)
}

func TestNoopRetriever(t *testing.T) {
	passages, err := NoopRetriever{}.Search(context.Background(), "anything", 4)
	assert.NoError(t, err)
	assert.Nil(t, passages)
}
