package web

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SRRStocks/internal/calculator"
	"SRRStocks/internal/chart"
	"SRRStocks/internal/dashboard"
	"SRRStocks/internal/model"
	"SRRStocks/internal/selector"
	"SRRStocks/internal/timerange"
)

// SectionID names one of the sidebar menu sections.
type SectionID string

const (
	SectionStocks    SectionID = "stocks"
	SectionFunds     SectionID = "funds"
	SectionWatchlist SectionID = "watchlist"
	SectionSettings  SectionID = "settings"
)

type section struct {
	ID    SectionID
	Label string
}

var sections = []section{
	{SectionStocks, "📈 Stocks"},
	{SectionFunds, "📊 Mutual Funds"},
	{SectionWatchlist, "⭐ Watchlist"},
	{SectionSettings, "⚙️ Settings"},
}

// MenuItem is one sidebar navigation link.
type MenuItem struct {
	Label  string
	Path   string
	Active bool
}

// SymbolOption is one entry of the stock multiselect.
type SymbolOption struct {
	Symbol   string
	Selected bool
}

// RangeOption is one radio button of the time range control.
type RangeOption struct {
	Choice  timerange.Choice
	Checked bool
}

// Sidebar is the rendered sidebar state. Symbol and range controls only show on the Stocks section.
type Sidebar struct {
	Menu     []MenuItem
	Query    string
	Options  []SymbolOption
	Ranges   []RangeOption
	Selected []string
	Range    timerange.Choice
}

// FormResult is the outcome of a simulated form submission.
type FormResult struct {
	Success   string
	Error     string
	Reference string
}

// StocksView is the data shown on the Stocks section.
type StocksView struct {
	Symbols  []string
	Range    timerange.Choice
	Window   model.TimeRange
	Columns  []string
	Preview  [][]string
	Summary  []SummaryRow
	Figures  []chart.Figure
	Warnings []string
	Info     string
	Error    string
}

// SummaryRow is a formatted calculator.Summary.
type SummaryRow struct {
	Symbol       string
	Observations int
	MeanClose    string
	High         string
	Low          string
	LastClose    string
	Change       string
}

// WatchRow is one watchlist entry with its latest recorded close, if any.
type WatchRow struct {
	Symbol string
	Close  string
	Volume string
	Date   string
}

// Page is the full render tree for one request.
type Page struct {
	Title        string
	Section      SectionID
	Sidebar      Sidebar
	Metrics      []dashboard.Metric
	Catalog      dashboard.Catalog
	Trade        FormResult
	Settings     FormResult
	Stocks       *StocksView
	Watchlist    []WatchRow
	Transactions []TransactionRow
}

// TransactionRow is a formatted dashboard.Transaction.
type TransactionRow struct {
	Date   string
	Stock  string
	Action string
	Qty    int64
	Price  string
}

// selection resolves the sidebar controls from request values.
// Without the submitted marker the catalog defaults apply.
func selection(form url.Values, cat dashboard.Catalog) (query string, options, symbols []string, choice timerange.Choice, rangeErr error) {
	query = form.Get("q")
	options = selector.Filter(query, cat.Symbols)

	requested := cat.DefaultSelection
	if form.Get("submitted") != "" {
		requested = splitSymbols(form["symbols"])
	}
	symbols = selector.Select(requested, options)

	choice, rangeErr = timerange.Parse(form.Get("range"), cat.DefaultRange)
	if rangeErr != nil {
		choice = cat.DefaultRange
	}
	return query, options, symbols, choice, rangeErr
}

// splitSymbols accepts both repeated values and comma separated lists.
func splitSymbols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func buildSidebar(active SectionID, query string, options, selected []string, choice timerange.Choice) Sidebar {
	sb := Sidebar{Query: query, Selected: selected, Range: choice}
	for _, sec := range sections {
		sb.Menu = append(sb.Menu, MenuItem{Label: sec.Label, Path: "/" + string(sec.ID), Active: sec.ID == active})
	}
	picked := make(map[string]bool, len(selected))
	for _, s := range selected {
		picked[s] = true
	}
	for _, o := range options {
		sb.Options = append(sb.Options, SymbolOption{Symbol: o, Selected: picked[o]})
	}
	for _, c := range timerange.Choices() {
		sb.Ranges = append(sb.Ranges, RangeOption{Choice: c, Checked: c == choice})
	}
	return sb
}

// errProvider marks a Stocks view whose history request failed as a whole.
var errProvider = errors.New("price provider failed")

// buildStocks fetches history for symbols and derives the preview, summary and charts.
func (h *Handler) buildStocks(ctx context.Context, symbols []string, choice timerange.Choice, now time.Time) (*StocksView, error) {
	view := &StocksView{Symbols: symbols, Range: choice}
	if len(symbols) == 0 {
		view.Info = "Select at least one stock to see its price history."
		return view, nil
	}

	view.Window = timerange.Resolve(choice, now)
	table, err := h.collector.Collect(ctx, symbols, view.Window)
	if err != nil {
		view.Error = fmt.Sprintf("Could not load price history: %v", err)
		return view, fmt.Errorf("%w: %v", errProvider, err)
	}

	failed := make(map[string]bool, len(table.Failures))
	for _, f := range table.Failures {
		failed[f.Symbol] = true
		view.Warnings = append(view.Warnings, fmt.Sprintf("No data for %s: %s", f.Symbol, f.Reason))
	}
	present := table.Present(symbols)
	for _, s := range symbols {
		if !failed[s] && !table.Has(s) {
			view.Warnings = append(view.Warnings, fmt.Sprintf("No data for %s in the selected range", s))
		}
	}

	if table.Len() == 0 || len(present) == 0 {
		view.Info = "No price data was returned for the selected range."
		return view, nil
	}

	view.Columns = append([]string{"Date"}, table.Order...)
	for _, row := range table.Head(5) {
		cells := []string{row.Date.Format(model.DateLayout)}
		for i, v := range row.Values {
			cells = append(cells, formatCell(table.Order[i], v))
		}
		view.Preview = append(view.Preview, cells)
	}

	for _, s := range calculator.Summarize(table, present) {
		view.Summary = append(view.Summary, SummaryRow{
			Symbol:       s.Symbol,
			Observations: s.Observations,
			MeanClose:    formatFloat(s.MeanClose, 2),
			High:         formatFloat(s.High, 2),
			Low:          formatFloat(s.Low, 2),
			LastClose:    formatFloat(s.LastClose, 2),
			Change:       formatPercent(s.ChangePercent),
		})
	}

	figs, err := chart.All(table, present)
	if err != nil {
		view.Error = fmt.Sprintf("Could not draw charts: %v", err)
		return view, err
	}
	view.Figures = figs
	return view, nil
}

func formatCell(column string, v float64) string {
	if strings.HasPrefix(column, string(model.FieldVolume)) {
		return formatFloat(v, 0)
	}
	return formatFloat(v, 2)
}

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v >= 0 {
		return "+" + strconv.FormatFloat(v, 'f', 2, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
