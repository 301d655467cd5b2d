// Package alphavantage is a minimal client for the Alpha Vantage company
// overview endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/credibility-cli/internal/resilience"
)

const (
	defaultBaseURL           = "https://www.alphavantage.co"
	defaultRequestsPerMinute = 5
)

// Client fetches company fundamentals.
type Client interface {
	Overview(ctx context.Context, symbol string) (*Overview, error)
}

// Overview is the subset of the OVERVIEW response the analyzer uses. All
// numeric fields are returned by the API as strings and may be "None".
type Overview struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Exchange                   string `json:"Exchange"`
	Sector                     string `json:"Sector"`
	ProfitMargin               string `json:"ProfitMargin"`
	OperatingMarginTTM         string `json:"OperatingMarginTTM"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	RevenueTTM                 string `json:"RevenueTTM"`

	// Throttling and error responses come back with status 200.
	Note         string `json:"Note,omitempty"`
	Information  string `json:"Information,omitempty"`
	ErrorMessage string `json:"Error Message,omitempty"`
}

// ErrNotFound is returned when the API has no overview for a symbol.
var ErrNotFound = eris.New("alphavantage: symbol not found")

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

// WithRequestsPerMinute sets the client-side rate limit. Zero or negative
// disables limiting.
func WithRequestsPerMinute(n int) Option {
	return func(c *httpClient) {
		if n <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Alpha Vantage client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/defaultRequestsPerMinute), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Overview(ctx context.Context, symbol string) (*Overview, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "alphavantage: rate limit wait")
	}

	q := url.Values{}
	q.Set("function", "OVERVIEW")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("alphavantage", resp.StatusCode, body)
	}

	var ov Overview
	if err := json.Unmarshal(body, &ov); err != nil {
		return nil, eris.Wrap(err, "alphavantage: unmarshal response")
	}

	switch {
	case ov.Note != "":
		return nil, resilience.NewTransientError(eris.Errorf("alphavantage: throttled: %s", ov.Note), http.StatusTooManyRequests)
	case ov.Information != "":
		return nil, eris.Errorf("alphavantage: %s", ov.Information)
	case ov.ErrorMessage != "":
		return nil, eris.Errorf("alphavantage: %s", ov.ErrorMessage)
	case ov.Symbol == "":
		return nil, eris.Wrap(ErrNotFound, symbol)
	}
	return &ov, nil
}
