package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credibility-cli/internal/model"
	"github.com/sells-group/credibility-cli/internal/resilience"
	"github.com/sells-group/credibility-cli/pkg/alphavantage"
	"github.com/sells-group/credibility-cli/pkg/newsapi"
)

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *memCache) DeleteExpired(context.Context) (int, error) { return 0, nil }
func (m *memCache) Migrate(context.Context) error              { return nil }
func (m *memCache) Close() error                               { return nil }

type fakeOverview struct {
	calls int
	ov    *alphavantage.Overview
	errs  []error
}

func (f *fakeOverview) Overview(_ context.Context, _ string) (*alphavantage.Overview, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.ov, nil
}

type fakeNews struct {
	calls int
	last  newsapi.SearchRequest
	resp  *newsapi.SearchResponse
	err   error
}

func (f *fakeNews) Everything(_ context.Context, sr newsapi.SearchRequest) (*newsapi.SearchResponse, error) {
	f.calls++
	f.last = sr
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func fastGuard() *resilience.Guard {
	return &resilience.Guard{
		Policy: resilience.Policy{Attempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}
}

func TestFinancials_NoClient(t *testing.T) {
	f := NewFinancials(nil)
	got := f.CompanyFinancials(context.Background(), "ACME")
	assert.Equal(t, model.UnavailableFinancials(), got)
}

func TestFinancials_MapsOverview(t *testing.T) {
	client := &fakeOverview{ov: &alphavantage.Overview{
		Symbol:                    "ACME",
		ProfitMargin:              "0.031",
		QuarterlyRevenueGrowthYOY: "0.12",
	}}
	f := NewFinancials(client)

	got := f.CompanyFinancials(context.Background(), "ACME")
	require.NotNil(t, got)
	assert.Equal(t, "0.031", got.ProfitMargin)
	assert.Equal(t, "0.12", got.RevenueGrowth)
}

func TestFinancials_MissingMetricsBecomeNA(t *testing.T) {
	client := &fakeOverview{ov: &alphavantage.Overview{Symbol: "ACME"}}
	got := NewFinancials(client).CompanyFinancials(context.Background(), "ACME")
	require.NotNil(t, got)
	assert.Equal(t, model.NotAvailable, got.ProfitMargin)
	assert.Equal(t, model.NotAvailable, got.RevenueGrowth)
}

func TestFinancials_ErrorReturnsNil(t *testing.T) {
	client := &fakeOverview{errs: []error{alphavantage.ErrNotFound}}
	f := NewFinancials(client, WithGuard(fastGuard()))

	assert.Nil(t, f.CompanyFinancials(context.Background(), "NOPE"))
	assert.Equal(t, 1, client.calls, "not found is not retried")
}

func TestFinancials_UnknownSymbolsKeepBreakerClosed(t *testing.T) {
	errs := make([]error, 5)
	for i := range errs {
		errs[i] = alphavantage.ErrNotFound
	}
	client := &fakeOverview{ov: &alphavantage.Overview{ProfitMargin: "0.2"}, errs: errs}
	g := fastGuard()
	g.Breaker = resilience.NewBreaker("alphavantage", 5, time.Minute)
	f := NewFinancials(client, WithGuard(g))

	for range 5 {
		assert.Nil(t, f.CompanyFinancials(context.Background(), "BAD"))
	}
	assert.Equal(t, resilience.StateClosed, g.Breaker.State())

	got := f.CompanyFinancials(context.Background(), "AAPL")
	require.NotNil(t, got, "valid symbol must not be blocked by unknown-symbol errors")
	assert.Equal(t, "0.2", got.ProfitMargin)
}

func TestFinancials_RetriesTransient(t *testing.T) {
	client := &fakeOverview{
		ov:   &alphavantage.Overview{ProfitMargin: "0.2"},
		errs: []error{resilience.NewTransientError(errors.New("throttled"), 429)},
	}
	f := NewFinancials(client, WithGuard(fastGuard()))

	got := f.CompanyFinancials(context.Background(), "ACME")
	require.NotNil(t, got)
	assert.Equal(t, "0.2", got.ProfitMargin)
	assert.Equal(t, 2, client.calls)
}

func TestFinancials_Cache(t *testing.T) {
	cache := newMemCache()
	client := &fakeOverview{ov: &alphavantage.Overview{ProfitMargin: "0.4", QuarterlyRevenueGrowthYOY: "0.1"}}
	f := NewFinancials(client, WithCache(cache, time.Hour))

	first := f.CompanyFinancials(context.Background(), "acme")
	second := f.CompanyFinancials(context.Background(), "ACME ")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []string{"financials:ACME"}, cache.setKeys)
}

func TestFinancials_CacheFailuresFallThrough(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("disk gone")
	cache.setErr = errors.New("disk gone")
	client := &fakeOverview{ov: &alphavantage.Overview{ProfitMargin: "0.4"}}
	f := NewFinancials(client, WithCache(cache, time.Hour))

	got := f.CompanyFinancials(context.Background(), "ACME")
	require.NotNil(t, got)
	assert.Equal(t, "0.4", got.ProfitMargin)
}

func TestFinancials_ZeroTTLDisablesCache(t *testing.T) {
	cache := newMemCache()
	client := &fakeOverview{ov: &alphavantage.Overview{ProfitMargin: "0.4"}}
	f := NewFinancials(client, WithCache(cache, 0))

	f.CompanyFinancials(context.Background(), "ACME")
	f.CompanyFinancials(context.Background(), "ACME")
	assert.Equal(t, 2, client.calls)
	assert.Empty(t, cache.setKeys)
}

func TestNews_NoClient(t *testing.T) {
	assert.False(t, NewNews(nil).VerifyPartnership(context.Background(), "Acme", "Globex"))
}

func TestNews_Verified(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  bool
	}{
		{"articles found", 3, true},
		{"no articles", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeNews{resp: &newsapi.SearchResponse{Status: "ok", TotalResults: tt.total}}
			got := NewNews(client).VerifyPartnership(context.Background(), "Acme", "Globex")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, newsapi.PartnershipQuery("Acme", "Globex"), client.last.Query)
		})
	}
}

func TestNews_ErrorIsUnverified(t *testing.T) {
	client := &fakeNews{err: errors.New("newsapi: apiKeyInvalid")}
	assert.False(t, NewNews(client, WithGuard(fastGuard())).VerifyPartnership(context.Background(), "Acme", "Globex"))
	assert.Equal(t, 1, client.calls)
}

func TestNews_Cache(t *testing.T) {
	cache := newMemCache()
	client := &fakeNews{resp: &newsapi.SearchResponse{TotalResults: 1}}
	n := NewNews(client, WithCache(cache, time.Hour))

	assert.True(t, n.VerifyPartnership(context.Background(), "Acme", "Globex"))
	assert.True(t, n.VerifyPartnership(context.Background(), "ACME", "globex"))
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []string{"partnership:acme|globex"}, cache.setKeys)
}

func TestNews_ErrorsAreNotCached(t *testing.T) {
	cache := newMemCache()
	client := &fakeNews{err: errors.New("boom")}
	n := NewNews(client, WithCache(cache, time.Hour))

	assert.False(t, n.VerifyPartnership(context.Background(), "Acme", "Globex"))
	assert.Empty(t, cache.setKeys)
}
