package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/resilience"
	"github.com/sells-group/credibility-cli/pkg/newsapi"
)

// News verifies partnership claims against NewsAPI coverage.
type News struct {
	base
	client newsapi.Client
}

// NewNews creates the news adapter. A nil client means no credentials are
// configured; every claim is then reported as unverified.
func NewNews(client newsapi.Client, opts ...Option) *News {
	return &News{base: newBase("newsapi", opts), client: client}
}

// VerifyPartnership reports whether any article covers a partnership
// between companyA and companyB.
func (n *News) VerifyPartnership(ctx context.Context, companyA, companyB string) bool {
	if n.client == nil {
		zap.L().Warn("provider: newsapi key not set, partnership claims cannot be verified")
		return false
	}

	key := "partnership:" + strings.ToLower(strings.TrimSpace(companyA)) + "|" + strings.ToLower(strings.TrimSpace(companyB))
	var verified bool
	if n.cached(ctx, key, &verified) {
		return verified
	}

	resp, err := resilience.Do(ctx, n.guard, func(ctx context.Context) (*newsapi.SearchResponse, error) {
		return n.client.Everything(ctx, newsapi.SearchRequest{
			Query: newsapi.PartnershipQuery(companyA, companyB),
		})
	})
	if err != nil {
		zap.L().Warn("provider: partnership news search failed",
			zap.String("company_a", companyA),
			zap.String("company_b", companyB),
			zap.Error(err),
		)
		return false
	}

	verified = resp.TotalResults > 0
	n.store(ctx, key, verified)
	return verified
}
