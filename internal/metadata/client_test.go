// Copyright (c) 2026 Yomikata. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestSearch_ImageFallback verifies that a search result's image resolves
to large, falling back to medium, falling back to small, matching
original_source's own BangumiSearchResult::from conversion tests.
*/
func TestSearch_ImageFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{
			List: []searchItem{
				{ID: 1, Name: "Large Only", Images: &images{Large: "large.jpg", Medium: "medium.jpg"}},
				{ID: 2, Name: "Medium Only", Images: &images{Medium: "medium.jpg", Small: "small.jpg"}},
				{ID: 3, Name: "No Images"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	results, err := client.Search(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "large.jpg", results[0].Image)
	assert.Equal(t, "medium.jpg", results[1].Image)
	assert.Equal(t, "", results[2].Image)
}

/*
TestSearch_NotFoundYieldsEmptyResults verifies that a 404 from the search
endpoint is treated as zero results, not an error.
*/
func TestSearch_NotFoundYieldsEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	results, err := client.Search(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, results)
}

/*
TestGetSubject_NotFound verifies that a 404 from the subject endpoint
surfaces as apperr.NotFound.
*/
func TestGetSubject_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.GetSubject(context.Background(), 999)
	require.Error(t, err)
}

/*
TestAutoScrape_NoResultsReasonsOut verifies that an empty search result
set produces the documented reason string rather than an error.
*/
func TestAutoScrape_NoResultsReasonsOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	doc, reason := client.AutoScrape(context.Background(), "nothing matches this")
	assert.Nil(t, doc)
	assert.Equal(t, "no results for title", reason)
}

/*
TestAutoScrape_HydratesFirstResult verifies that auto_scrape fetches the
detailed subject for the first search hit and passes it through unchanged.
*/
func TestAutoScrape_HydratesFirstResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search/subject/test":
			_ = json.NewEncoder(w).Encode(searchResponse{List: []searchItem{{ID: 42, Name: "Test"}}})
		default:
			_, _ = w.Write([]byte(`{"id":42,"name":"Test"}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	doc, reason := client.AutoScrape(context.Background(), "test")
	require.Empty(t, reason)
	require.NotNil(t, doc)
	assert.JSONEq(t, `{"id":42,"name":"Test"}`, string(doc))
}

// newTestClient builds a Client whose requests are transparently
// redirected to baseURL instead of the real Bangumi API.
func newTestClient(baseURL string, cache *Cache) *Client {
	c := New("", cache, testLogger())
	c.http.HTTPClient.Transport = rewriteHostTransport{baseURL: baseURL}
	return c
}

// rewriteHostTransport redirects every request to baseURL, preserving the
// original path and query, so tests never reach the real Bangumi API.
type rewriteHostTransport struct {
	baseURL string
}

func (t rewriteHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := http.NewRequestWithContext(req.Context(), req.Method, t.baseURL+req.URL.RequestURI(), req.Body)
	if err != nil {
		return nil, err
	}
	target.Header = req.Header
	return http.DefaultTransport.RoundTrip(target)
}
