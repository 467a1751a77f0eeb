package collector

import "SRRStocks/internal/model"

// Normalize flattens a provider frame into the wide table. Tuple columns become
// "<Field>_<Symbol>"; flat single-symbol columns keep their field name.
func Normalize(frame *model.PriceFrame) *model.PriceTable {
	t := model.NewPriceTable()
	t.Dates = frame.Dates
	for _, c := range frame.Columns {
		t.AddColumn(c.Key.Name(), c.Values)
	}
	t.Symbols = append(t.Symbols, frame.Symbols...)
	t.Failures = append(t.Failures, frame.Failures...)
	return t
}
