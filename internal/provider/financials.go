package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/model"
	"github.com/sells-group/credibility-cli/internal/resilience"
	"github.com/sells-group/credibility-cli/pkg/alphavantage"
)

// Financials looks up company metrics from Alpha Vantage.
type Financials struct {
	base
	client alphavantage.Client
}

// NewFinancials creates the financials adapter. A nil client means no
// credentials are configured; every lookup then returns the N/A sentinel.
func NewFinancials(client alphavantage.Client, opts ...Option) *Financials {
	return &Financials{base: newBase("alphavantage", opts), client: client}
}

// CompanyFinancials returns the metrics for symbol, or nil when the lookup
// failed.
func (f *Financials) CompanyFinancials(ctx context.Context, symbol string) *model.Financials {
	if f.client == nil {
		zap.L().Warn("provider: alphavantage key not set, financial checks use placeholder data")
		return model.UnavailableFinancials()
	}

	key := "financials:" + strings.ToUpper(strings.TrimSpace(symbol))
	var fin model.Financials
	if f.cached(ctx, key, &fin) {
		return &fin
	}

	ov, err := resilience.Do(ctx, f.guard, func(ctx context.Context) (*alphavantage.Overview, error) {
		return f.client.Overview(ctx, symbol)
	})
	if err != nil {
		zap.L().Warn("provider: fetch company financials failed",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return nil
	}

	fin = model.Financials{
		ProfitMargin:  metricOrNA(ov.ProfitMargin),
		RevenueGrowth: metricOrNA(ov.QuarterlyRevenueGrowthYOY),
	}
	f.store(ctx, key, fin)
	return &fin
}

func metricOrNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.NotAvailable
	}
	return v
}
