package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"SRRStocks/internal/model"
)

// BarsAPIFetcher implements Fetcher against a REST daily-bars API.
// A single-symbol request yields flat columns, the way the upstream API reports it.
type BarsAPIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBarsAPIFetcher creates a new fetcher with optional proxy support.
func NewBarsAPIFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *BarsAPIFetcher {
	return &BarsAPIFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *BarsAPIFetcher) Name() string { return "barsapi" }

// apiBar is the expected JSON shape from the bars API.
type apiBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
	Volume    float64  `json:"volume"`
}

func (f *BarsAPIFetcher) FetchHistory(ctx context.Context, symbols []string, window model.TimeRange) (*model.PriceFrame, error) {
	bars := make(map[string][]model.OHLCV, len(symbols))
	var failures []model.SymbolFailure
	var hardErrs []error

	for _, symbol := range symbols {
		b, err := f.fetchBars(ctx, symbol, window)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures = append(failures, model.SymbolFailure{
				Symbol:    symbol,
				Reason:    err.Error(),
				Transient: !errors.Is(err, ErrNoData),
			})
			if !errors.Is(err, ErrNoData) {
				hardErrs = append(hardErrs, fmt.Errorf("%s: %w", symbol, err))
			}
			continue
		}
		bars[symbol] = b
	}
	if len(symbols) > 0 && len(hardErrs) == len(symbols) {
		return nil, fmt.Errorf("barsapi: all symbols failed: %w", errors.Join(hardErrs...))
	}

	frame := model.MergeBars(symbols, bars, true)
	frame.Failures = failures
	return frame, nil
}

func (f *BarsAPIFetcher) fetchBars(ctx context.Context, symbol string, window model.TimeRange) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&from=%s&to=%s", f.BaseURL,
		url.QueryEscape(symbol), window.Start.Format(model.DateLayout), window.End.Format(model.DateLayout))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []apiBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	bars := make([]model.OHLCV, 0, len(raw))
	for _, rb := range raw {
		t := model.Date(time.Unix(rb.Timestamp, 0).UTC())
		if t.Before(window.Start) || !t.Before(window.End) {
			continue
		}
		adj := math.NaN()
		if rb.AdjClose != nil {
			adj = *rb.AdjClose
		}
		bars = append(bars, model.OHLCV{
			Time:     t,
			Open:     rb.Open,
			High:     rb.High,
			Low:      rb.Low,
			Close:    rb.Close,
			AdjClose: adj,
			Volume:   rb.Volume,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
