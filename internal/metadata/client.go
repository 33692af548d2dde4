// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package metadata translates a content title into an opaque metadata
document from the Bangumi subject catalog. The scanner passes the
returned document through to storage unchanged; it does not interpret
any field.
*/
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/constants"
)

const (
	bangumiAPIBase = "https://api.bgm.tv"
	userAgent      = "yomikata-ingest/0.1.0 (https://github.com/yomikata/ingest)"
)

// searchResult is one entry from a Bangumi subject search, with its cover
// image already resolved to the largest size Bangumi reported.
type searchResult struct {
	ID     int64
	Name   string
	NameCN string
	Image  string
}

type searchResponse struct {
	List []searchItem `json:"list"`
}

type searchItem struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	NameCN string  `json:"name_cn"`
	Images *images `json:"images"`
}

// images carries the three Bangumi cover sizes; the caller picks the
// largest available via fallback(), never needing the others.
type images struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
	Small  string `json:"small"`
}

func (img *images) fallback() string {
	if img == nil {
		return ""
	}
	if img.Large != "" {
		return img.Large
	}
	if img.Medium != "" {
		return img.Medium
	}
	return img.Small
}

// Client calls the Bangumi subject API on the scanner's behalf.
type Client struct {
	http   *retryablehttp.Client
	apiKey string
	cache  *Cache // optional; nil skips caching entirely
	logger *slog.Logger
}

// New constructs a Client. apiKey may be empty; Bangumi permits
// unauthenticated requests at reduced rate limits. cache may be nil, in
// which case every subject is fetched live.
func New(apiKey string, cache *Cache, logger *slog.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.HTTPClient.Timeout = constants.DefaultMetadataHTTPTimeout
	httpClient.Logger = nil // silence retryablehttp's own default stderr logger

	return &Client{http: httpClient, apiKey: apiKey, cache: cache, logger: logger}
}

// Search looks up subjects matching title, filtered to books (manga and
// light novels), at most 10 results. A 404 is treated as zero results
// rather than an error.
func (c *Client) Search(ctx context.Context, title string) ([]searchResult, error) {
	query := url.Values{}
	query.Set("type", "1")
	query.Set("responseGroup", "small")
	query.Set("max_results", "10")

	requestURL := fmt.Sprintf("%s/search/subject/%s?%s", bangumiAPIBase, url.PathEscape(title), query.Encode())

	var parsed searchResponse
	status, err := c.getJSON(ctx, requestURL, &parsed)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	results := make([]searchResult, 0, len(parsed.List))
	for _, item := range parsed.List {
		results = append(results, searchResult{
			ID:     item.ID,
			Name:   item.Name,
			NameCN: item.NameCN,
			Image:  item.Images.fallback(),
		})
	}
	return results, nil
}

// GetSubject fetches the full subject document for id, returned as an
// opaque JSON blob for pass-through storage. A cache hit skips the HTTP
// round-trip entirely.
func (c *Client) GetSubject(ctx context.Context, id int64) (json.RawMessage, error) {
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, id); err == nil && ok {
			return cached, nil
		}
	}

	requestURL := fmt.Sprintf("%s/v0/subjects/%d", bangumiAPIBase, id)

	var raw json.RawMessage
	status, err := c.getJSON(ctx, requestURL, &raw)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperr.NotFound("bangumi subject")
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, id, raw); err != nil {
			c.logger.Warn("metadata_cache_set_failed", slog.Int64("subject_id", id), slog.Any("error", err))
		}
	}

	return raw, nil
}

// AutoScrape searches for title and, on a hit, fetches the first result's
// full subject document. It returns (nil, reason) rather than an error
// when nothing usable was found, since a failed scrape never aborts a
// scan.
func (c *Client) AutoScrape(ctx context.Context, title string) (json.RawMessage, string) {
	results, err := c.Search(ctx, title)
	if err != nil {
		c.logger.Warn("metadata_search_failed", slog.String("title", title), slog.Any("error", err))
		return nil, fmt.Sprintf("search failed: %v", err)
	}
	if len(results) == 0 {
		return nil, "no results for title"
	}

	subject, err := c.GetSubject(ctx, results[0].ID)
	if err != nil {
		c.logger.Warn("metadata_get_subject_failed", slog.String("title", title), slog.Any("error", err))
		return nil, fmt.Sprintf("get_subject failed: %v", err)
	}

	return subject, ""
}

// getJSON issues a GET, decoding a 2xx body into out. Non-2xx, non-404
// statuses are reported as apperr.MetadataScrape; 404 is returned to the
// caller as a status code with no error so each caller can map it to its
// own "not found" semantics (empty results for Search, apperr.NotFound
// for GetSubject).
func (c *Client) getJSON(ctx context.Context, requestURL string, out any) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperr.MetadataScrape(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, apperr.MetadataScrape(fmt.Sprintf("bangumi returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, apperr.Internal(err)
	}

	return resp.StatusCode, nil
}
