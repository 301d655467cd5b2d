// Package newsapi is a minimal client for the NewsAPI "everything" search.
package newsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credibility-cli/internal/resilience"
)

const (
	defaultBaseURL  = "https://newsapi.org"
	defaultLanguage = "en"
	defaultSortBy   = "relevancy"
)

// Client searches news articles.
type Client interface {
	Everything(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the query parameters for GET /v2/everything.
type SearchRequest struct {
	Query    string
	Language string
	SortBy   string
	PageSize int
}

// SearchResponse is the body returned by /v2/everything.
type SearchResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Article is one search hit.
type Article struct {
	Source      Source    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Source identifies the publisher.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithDefaults sets the language and sort order used when a request leaves
// them empty.
func WithDefaults(language, sortBy string) Option {
	return func(c *httpClient) {
		if language != "" {
			c.language = language
		}
		if sortBy != "" {
			c.sortBy = sortBy
		}
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	sortBy   string
	http     *http.Client
}

// NewClient creates a NewsAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		sortBy:   defaultSortBy,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Everything(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	if sr.Query == "" {
		return nil, eris.New("newsapi: query is required")
	}
	if sr.Language == "" {
		sr.Language = c.language
	}
	if sr.SortBy == "" {
		sr.SortBy = c.sortBy
	}

	q := url.Values{}
	q.Set("q", sr.Query)
	q.Set("language", sr.Language)
	q.Set("sortBy", sr.SortBy)
	if sr.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(sr.PageSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("newsapi", resp.StatusCode, body)
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "newsapi: unmarshal response")
	}
	if result.Status == "error" {
		return nil, eris.Errorf("newsapi: %s: %s", result.Code, result.Message)
	}
	return &result, nil
}
