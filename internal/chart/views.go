package chart

import (
	"fmt"

	"SRRStocks/internal/calculator"
	"SRRStocks/internal/model"
)

// StackGroup is the shared Plotly stack group of the volume chart.
const StackGroup = "one"

func lineSeries(table *model.PriceTable, symbols []string, field model.Field) ([]Trace, error) {
	x := table.DateStrings()
	traces := make([]Trace, 0, len(symbols))
	for _, s := range symbols {
		vals, err := table.Series(field, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		traces = append(traces, Trace{
			Type: "scatter",
			Mode: "lines",
			Name: s,
			X:    x,
			Y:    toValues(vals),
		})
	}
	return traces, nil
}

// ClosingPrice plots each symbol's close against date as a line.
func ClosingPrice(table *model.PriceTable, symbols []string) (Figure, error) {
	traces, err := lineSeries(table, symbols, model.FieldClose)
	if err != nil {
		return Figure{}, fmt.Errorf("closing price: %w", err)
	}
	return Figure{
		ID:     "closing-price",
		Title:  "Closing Price",
		Data:   traces,
		Layout: Layout{XAxis: Axis{Title: "Date"}, YAxis: Axis{Title: "Price"}, ShowLegend: true},
	}, nil
}

// Volume plots each symbol's traded volume as a stacked area. Only the top edge reads
// as a cumulative total; bands above the first are not independently readable.
func Volume(table *model.PriceTable, symbols []string) (Figure, error) {
	traces, err := lineSeries(table, symbols, model.FieldVolume)
	if err != nil {
		return Figure{}, fmt.Errorf("volume: %w", err)
	}
	for i := range traces {
		traces[i].StackGroup = StackGroup
	}
	return Figure{
		ID:     "volume",
		Title:  "Volume Traded",
		Data:   traces,
		Layout: Layout{XAxis: Axis{Title: "Date"}, YAxis: Axis{Title: "Volume"}, ShowLegend: true},
	}, nil
}

// AverageClose renders one bar per symbol with the mean close over the window.
// A symbol with no valid closes gets a NaN mean, drawn as an empty bar.
func AverageClose(table *model.PriceTable, symbols []string) (Figure, error) {
	traces := make([]Trace, 0, len(symbols))
	for _, s := range symbols {
		vals, err := table.Series(model.FieldClose, s)
		if err != nil {
			return Figure{}, fmt.Errorf("average close: %s: %w", s, err)
		}
		traces = append(traces, Trace{
			Type: "bar",
			Name: s,
			X:    []string{s},
			Y:    []Value{Value(calculator.Mean(vals))},
		})
	}
	return Figure{
		ID:     "average-close",
		Title:  "Average Closing Price",
		Data:   traces,
		Layout: Layout{XAxis: Axis{Title: "Stock"}, YAxis: Axis{Title: "Avg Close Price"}, ShowLegend: true},
	}, nil
}

// All builds the three Stocks page figures in display order.
func All(table *model.PriceTable, symbols []string) ([]Figure, error) {
	builders := []func(*model.PriceTable, []string) (Figure, error){ClosingPrice, Volume, AverageClose}
	figs := make([]Figure, 0, len(builders))
	for _, build := range builders {
		fig, err := build(table, symbols)
		if err != nil {
			return nil, err
		}
		figs = append(figs, fig)
	}
	return figs, nil
}
