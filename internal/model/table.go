package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrColumnMissing is returned when a field/symbol column is absent from a table.
var ErrColumnMissing = errors.New("column missing")

// ColumnKey identifies a provider column. Symbol is empty for a flat single-symbol frame.
type ColumnKey struct {
	Field  Field
	Symbol string
}

// Name joins the key as "<Field>_<Symbol>", leaving flat keys untouched.
func (k ColumnKey) Name() string {
	return strings.Trim(string(k.Field)+"_"+k.Symbol, "_")
}

// FrameColumn is one provider column aligned with PriceFrame.Dates.
type FrameColumn struct {
	Key    ColumnKey
	Values []float64
}

// SymbolFailure explains why a requested symbol has no columns.
// Transient is set for request errors that may succeed on retry, as opposed to
// a symbol with no history in the window.
type SymbolFailure struct {
	Symbol    string
	Reason    string
	Transient bool
}

// PriceFrame is the provider-shaped result of a bulk history request.
type PriceFrame struct {
	Dates    []time.Time
	Columns  []FrameColumn
	Symbols  []string
	Failures []SymbolFailure
}

// HasTransientFailure reports whether any symbol failed with a retryable error.
func (f *PriceFrame) HasTransientFailure() bool {
	for _, fail := range f.Failures {
		if fail.Transient {
			return true
		}
	}
	return false
}

// PriceTable is the normalized wide table: one row per date, one column per field and symbol.
type PriceTable struct {
	Dates    []time.Time
	Order    []string
	Columns  map[string][]float64
	Symbols  []string
	Failures []SymbolFailure
}

// NewPriceTable creates an empty table.
func NewPriceTable() *PriceTable {
	return &PriceTable{Columns: make(map[string][]float64)}
}

// Len returns the number of rows.
func (t *PriceTable) Len() int { return len(t.Dates) }

// Column returns the values of a named column.
func (t *PriceTable) Column(name string) ([]float64, bool) {
	v, ok := t.Columns[name]
	return v, ok
}

// AddColumn appends a column, keeping insertion order.
func (t *PriceTable) AddColumn(name string, values []float64) {
	if _, ok := t.Columns[name]; !ok {
		t.Order = append(t.Order, name)
	}
	t.Columns[name] = values
}

// Series looks up "<field>_<symbol>", falling back to the flat "<field>" column
// when the table holds a single flat symbol.
func (t *PriceTable) Series(field Field, symbol string) ([]float64, error) {
	if v, ok := t.Columns[ColumnKey{Field: field, Symbol: symbol}.Name()]; ok {
		return v, nil
	}
	if len(t.Symbols) == 1 && t.Symbols[0] == symbol {
		if v, ok := t.Columns[string(field)]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s_%s: %w", field, symbol, ErrColumnMissing)
}

// Has reports whether the table carries a close column for symbol.
func (t *PriceTable) Has(symbol string) bool {
	_, err := t.Series(FieldClose, symbol)
	return err == nil
}

// Present filters symbols down to those with data in the table.
func (t *PriceTable) Present(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if t.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Row is one rendered table row.
type Row struct {
	Date   time.Time
	Values []float64
}

// Head returns up to n leading rows with values in column order.
func (t *PriceTable) Head(n int) []Row {
	if n > len(t.Dates) {
		n = len(t.Dates)
	}
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		vals := make([]float64, len(t.Order))
		for j, name := range t.Order {
			vals[j] = t.Columns[name][i]
		}
		rows[i] = Row{Date: t.Dates[i], Values: vals}
	}
	return rows
}

// DateStrings renders the date index as text.
func (t *PriceTable) DateStrings() []string {
	out := make([]string, len(t.Dates))
	for i, d := range t.Dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}

// MergeBars builds a frame from per-symbol bars. Rows are the sorted union of all dates;
// cells a symbol has no bar for are NaN. When flat is true and exactly one symbol has data,
// columns are emitted without the symbol component.
func MergeBars(symbols []string, bars map[string][]OHLCV, flat bool) *PriceFrame {
	seen := make(map[time.Time]struct{})
	for _, s := range symbols {
		for _, b := range bars[s] {
			seen[Date(b.Time)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	frame := &PriceFrame{Dates: dates}
	for _, s := range symbols {
		sb, ok := bars[s]
		if !ok || len(sb) == 0 {
			continue
		}
		frame.Symbols = append(frame.Symbols, s)
		keySymbol := s
		if flat && len(symbols) == 1 {
			keySymbol = ""
		}
		for _, f := range Fields {
			if f == FieldAdjClose && !hasAdjClose(sb) {
				continue
			}
			vals := make([]float64, len(dates))
			for i := range vals {
				vals[i] = math.NaN()
			}
			for _, b := range sb {
				vals[index[Date(b.Time)]] = b.Value(f)
			}
			frame.Columns = append(frame.Columns, FrameColumn{
				Key:    ColumnKey{Field: f, Symbol: keySymbol},
				Values: vals,
			})
		}
	}
	return frame
}

func hasAdjClose(bars []OHLCV) bool {
	for _, b := range bars {
		if !math.IsNaN(b.AdjClose) {
			return true
		}
	}
	return false
}
