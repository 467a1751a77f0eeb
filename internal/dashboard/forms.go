package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSymbol   = errors.New("stock symbol is required")
	ErrInvalidAction   = errors.New("action must be Buy or Sell")
	ErrInvalidQuantity = errors.New("quantity must be a whole number of at least 1")
	ErrInvalidDate     = errors.New("date of birth must be YYYY-MM-DD")
)

// TradeOrder is a submitted trade simulator form.
type TradeOrder struct {
	Action   string
	Symbol   string
	Quantity int64
}

// Confirmation echoes a simulated submission back to the page.
type Confirmation struct {
	Reference string
	Message   string
}

// ParseTradeOrder validates raw form values. The symbol is uppercased.
func ParseTradeOrder(action, symbol, quantity string) (TradeOrder, error) {
	o := TradeOrder{Action: action, Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
	if o.Action != "Buy" && o.Action != "Sell" {
		return o, ErrInvalidAction
	}
	if o.Symbol == "" {
		return o, ErrMissingSymbol
	}
	if quantity == "" {
		quantity = "1"
	}
	q, err := strconv.ParseInt(strings.TrimSpace(quantity), 10, 64)
	if err != nil || q < 1 {
		return o, ErrInvalidQuantity
	}
	o.Quantity = q
	return o, nil
}

// PlaceOrder simulates order placement. Nothing is executed or stored.
func PlaceOrder(o TradeOrder) Confirmation {
	return Confirmation{
		Reference: uuid.NewString(),
		Message:   fmt.Sprintf("%s order placed for %d shares of %s (Simulated)", o.Action, o.Quantity, o.Symbol),
	}
}

// Settings is a submitted account settings form.
type Settings struct {
	BankAccount string
	Mobile      string
	DateOfBirth time.Time
	Nominee     string
}

// ParseSettings validates raw form values. All fields are optional.
func ParseSettings(bank, mobile, dob, nominee string) (Settings, error) {
	s := Settings{
		BankAccount: strings.TrimSpace(bank),
		Mobile:      strings.TrimSpace(mobile),
		Nominee:     strings.TrimSpace(nominee),
	}
	if dob = strings.TrimSpace(dob); dob != "" {
		d, err := time.Parse("2006-01-02", dob)
		if err != nil {
			return s, ErrInvalidDate
		}
		s.DateOfBirth = d
	}
	return s, nil
}

// SaveSettings simulates saving account settings. Nothing is stored.
func SaveSettings(Settings) Confirmation {
	return Confirmation{
		Reference: uuid.NewString(),
		Message:   "Settings saved (simulated).",
	}
}
