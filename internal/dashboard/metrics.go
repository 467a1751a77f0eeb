package dashboard

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Metric is one headline figure of the wallet strip.
type Metric struct {
	Label string
	Value string
	Delta string
}

// FormatMoney renders amount in the catalog currency, e.g. "₹50,000.00".
// Unknown currency codes fall back to a plain two-decimal number.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

// Metrics computes the wallet balance, profit and total value strip.
func Metrics(c Catalog) []Metric {
	total := c.WalletBalance.Add(c.Profit)
	delta := ""
	if !c.WalletBalance.IsZero() {
		pct := c.Profit.Div(c.WalletBalance).Mul(decimal.NewFromInt(100))
		sign := ""
		if !pct.IsNegative() {
			sign = "+"
		}
		delta = sign + pct.StringFixed(2) + "%"
	}
	return []Metric{
		{Label: "Wallet Balance", Value: FormatMoney(c.WalletBalance, c.Currency)},
		{Label: "Profit", Value: FormatMoney(c.Profit, c.Currency), Delta: delta},
		{Label: "Total Value", Value: FormatMoney(total, c.Currency)},
	}
}
