// Package dashboard holds the static sample content of the dashboard and the simulated forms.
package dashboard

import (
	"github.com/shopspring/decimal"

	"SRRStocks/internal/timerange"
)

// Holding is one row of the sample holdings table.
type Holding struct {
	Stock       string
	Quantity    int64
	AvgBuyPrice decimal.Decimal
}

// Invested returns quantity times average buy price.
func (h Holding) Invested() decimal.Decimal {
	return h.AvgBuyPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// Fund is one row of the mutual funds table.
type Fund struct {
	Name      string
	Category  string
	Returns5Y string
	AUMCrore  string
}

// Transaction is one row of the simulated past transactions table.
type Transaction struct {
	Date   string
	Stock  string
	Action string
	Qty    int64
	Price  decimal.Decimal
}

// Catalog is the immutable content rendered on every page.
type Catalog struct {
	Currency         string
	WalletBalance    decimal.Decimal
	Profit           decimal.Decimal
	Symbols          []string
	DefaultSelection []string
	DefaultRange     timerange.Choice
	Watchlist        []string
	Holdings         []Holding
	Funds            []Fund
	Transactions     []Transaction
	NAVNotice        string
}

// DefaultCatalog returns the sample content shipped with the dashboard.
func DefaultCatalog() Catalog {
	return Catalog{
		Currency:      "INR",
		WalletBalance: decimal.NewFromInt(50000),
		Profit:        decimal.NewFromInt(14000),
		Symbols: []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX", "IBM", "INTC",
			"TATASTEEL.NS", "RELIANCE.NS", "DIXON.NS", "INFY.NS", "NIFTYBEES.NS",
		},
		DefaultSelection: []string{"AAPL", "TATASTEEL.NS"},
		DefaultRange:     timerange.Year,
		Watchlist:        []string{"DIXON.NS", "NVDA", "TATASTEEL.NS", "NIFTYBEES.NS"},
		Holdings: []Holding{
			{"MOTISONS", 200, decimal.RequireFromString("112.50")},
			{"GANGAFORGE", 95, decimal.RequireFromString("18.90")},
			{"AAPL", 5, decimal.RequireFromString("145.00")},
			{"TSLA", 3, decimal.RequireFromString("750.00")},
			{"TATASTEEL", 10, decimal.RequireFromString("126.00")},
		},
		Funds: []Fund{
			{"Nippon India Small Cap Fund", "Small Cap", "32.5%", "46,832"},
			{"Parag Parikh Flexi Cap Fund", "Flexi Cap", "23.4%", "54,219"},
			{"SBI Bluechip Fund", "Large Cap", "13.2%", "38,920"},
			{"HDFC Mid-Cap Opportunities Fund", "Mid Cap", "20.8%", "35,112"},
		},
		Transactions: []Transaction{
			{"2025-07-25", "AAPL", "Buy", 5, decimal.NewFromInt(145)},
			{"2025-07-20", "GANGAFORGE", "Sell", 20, decimal.RequireFromString("21.5")},
			{"2025-07-15", "TSLA", "Buy", 3, decimal.NewFromInt(745)},
		},
		NAVNotice: "Live NAV not connected. Use APIs for real-time mutual fund integration.",
	}
}
