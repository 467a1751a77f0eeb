package dashboard

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestMetrics_Default(t *testing.T) {
	m := Metrics(DefaultCatalog())
	if len(m) != 3 {
		t.Fatalf("expected 3 metrics, got %d", len(m))
	}
	if m[0].Value != "₹50,000.00" {
		t.Errorf("unexpected wallet balance %q", m[0].Value)
	}
	if m[1].Value != "₹14,000.00" || m[1].Delta != "+28.00%" {
		t.Errorf("unexpected profit %q / %q", m[1].Value, m[1].Delta)
	}
	if m[2].Value != "₹64,000.00" {
		t.Errorf("unexpected total %q", m[2].Value)
	}
}

func TestMetrics_ZeroBalance(t *testing.T) {
	c := DefaultCatalog()
	c.WalletBalance = decimal.Zero
	if m := Metrics(c); m[1].Delta != "" {
		t.Errorf("expected no delta for zero balance, got %q", m[1].Delta)
	}
}

func TestFormatMoney_UnknownCurrency(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("12.5"), "XXX-NOPE"); got != "12.50" {
		t.Errorf("unexpected fallback %q", got)
	}
}

func TestHolding_Invested(t *testing.T) {
	h := DefaultCatalog().Holdings[0]
	if !h.Invested().Equal(decimal.NewFromInt(22500)) {
		t.Errorf("expected 22500, got %s", h.Invested())
	}
}

func TestParseTradeOrder(t *testing.T) {
	tests := []struct {
		action, symbol, qty string
		wantErr             error
	}{
		{"Buy", "aapl", "5", nil},
		{"Sell", " tatasteel ", "", nil},
		{"Hold", "AAPL", "1", ErrInvalidAction},
		{"Buy", "", "1", ErrMissingSymbol},
		{"Buy", "AAPL", "0", ErrInvalidQuantity},
		{"Buy", "AAPL", "1.5", ErrInvalidQuantity},
	}
	for _, tt := range tests {
		_, err := ParseTradeOrder(tt.action, tt.symbol, tt.qty)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%q/%q/%q: expected %v, got %v", tt.action, tt.symbol, tt.qty, tt.wantErr, err)
		}
	}
}

func TestPlaceOrder(t *testing.T) {
	o, err := ParseTradeOrder("Buy", "aapl", "5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := PlaceOrder(o)
	if c.Message != "Buy order placed for 5 shares of AAPL (Simulated)" {
		t.Errorf("unexpected message %q", c.Message)
	}
	if _, err := uuid.Parse(c.Reference); err != nil {
		t.Errorf("expected uuid reference, got %q", c.Reference)
	}
}

func TestSettings(t *testing.T) {
	if _, err := ParseSettings("123", "98765", "1990-13-01", "A"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	s, err := ParseSettings("", "", "", "")
	if err != nil {
		t.Fatalf("empty settings should be valid: %v", err)
	}
	if c := SaveSettings(s); c.Message != "Settings saved (simulated)." {
		t.Errorf("unexpected message %q", c.Message)
	}
}
