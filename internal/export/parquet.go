// Package export writes normalized price history to Parquet in long format.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/parquet-go/parquet-go"

	"SRRStocks/internal/model"
)

// Row is one (date, symbol) observation.
type Row struct {
	Date     string   `parquet:"date"`
	Symbol   string   `parquet:"symbol"`
	Open     *float64 `parquet:"open,optional"`
	High     *float64 `parquet:"high,optional"`
	Low      *float64 `parquet:"low,optional"`
	Close    *float64 `parquet:"close,optional"`
	AdjClose *float64 `parquet:"adj_close,optional"`
	Volume   *float64 `parquet:"volume,optional"`
}

func optional(vals []float64, i int) *float64 {
	if vals == nil || i >= len(vals) || math.IsNaN(vals[i]) {
		return nil
	}
	v := vals[i]
	return &v
}

// Rows unpivots the wide table into one row per date and symbol.
// Dates where a symbol has no close are skipped.
func Rows(table *model.PriceTable, symbols []string) []Row {
	series := func(f model.Field, s string) []float64 {
		v, err := table.Series(f, s)
		if err != nil {
			return nil
		}
		return v
	}

	dates := table.DateStrings()
	var rows []Row
	for _, s := range symbols {
		closes := series(model.FieldClose, s)
		if closes == nil {
			continue
		}
		open, high, low := series(model.FieldOpen, s), series(model.FieldHigh, s), series(model.FieldLow, s)
		adj, vol := series(model.FieldAdjClose, s), series(model.FieldVolume, s)
		for i, d := range dates {
			if math.IsNaN(closes[i]) {
				continue
			}
			rows = append(rows, Row{
				Date:     d,
				Symbol:   s,
				Open:     optional(open, i),
				High:     optional(high, i),
				Low:      optional(low, i),
				Close:    optional(closes, i),
				AdjClose: optional(adj, i),
				Volume:   optional(vol, i),
			})
		}
	}
	return rows
}

// Write encodes rows as a Parquet file to w.
func Write(w io.Writer, rows []Row) error {
	if err := parquet.Write(w, rows); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

// WriteFile writes rows to a Parquet file at path.
func WriteFile(path string, rows []Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
