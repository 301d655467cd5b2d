package model

// Announcement is one corporate announcement submitted for analysis.
type Announcement struct {
	Text        string `json:"text" yaml:"text" validate:"required"`
	CompanyName string `json:"company_name" yaml:"company_name" validate:"required"`
	Symbol      string `json:"symbol" yaml:"symbol" validate:"required"`
}

// NotAvailable is the sentinel value providers use for metrics they could not
// obtain.
const NotAvailable = "N/A"

// Financials holds the company metrics used by the historical mismatch check.
// Values are kept as the provider's raw strings; they may be NotAvailable or
// otherwise non-numeric.
type Financials struct {
	ProfitMargin  string `json:"profit_margin"`
	RevenueGrowth string `json:"revenue_growth"`
}

// UnavailableFinancials returns the sentinel returned when no provider
// credentials are configured.
func UnavailableFinancials() *Financials {
	return &Financials{ProfitMargin: NotAvailable, RevenueGrowth: NotAvailable}
}
