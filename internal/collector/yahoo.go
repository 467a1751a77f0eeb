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
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"SRRStocks/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL     string
	Client      *http.Client
	Concurrency int
	SymbolMap   map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration, concurrency int) *YahooFetcher {
	return &YahooFetcher{
		BaseURL:     yahooBaseURL,
		Client:      newHTTPClient(proxyURL, timeout),
		Concurrency: concurrency,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"NIFTY":  "^NSEI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

// FetchHistory requests every symbol on a bounded pool and merges the results into one frame.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbols []string, window model.TimeRange) (*model.PriceFrame, error) {
	var (
		mu       sync.Mutex
		bars     = make(map[string][]model.OHLCV, len(symbols))
		failures = make(map[string]error)
		hardErrs []error
	)

	workers := f.Concurrency
	if workers <= 0 {
		workers = 4
	}
	p := pool.New().WithMaxGoroutines(workers)
	for _, symbol := range symbols {
		symbol := symbol
		p.Go(func() {
			b, err := f.fetchChart(ctx, symbol, window)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[symbol] = err
				if !errors.Is(err, ErrNoData) {
					hardErrs = append(hardErrs, fmt.Errorf("%s: %w", symbol, err))
				}
				return
			}
			bars[symbol] = b
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(symbols) > 0 && len(hardErrs) == len(symbols) {
		return nil, fmt.Errorf("yahoo: all symbols failed: %w", errors.Join(hardErrs...))
	}

	frame := model.MergeBars(symbols, bars, false)
	for _, s := range symbols {
		if err, ok := failures[s]; ok {
			frame.Failures = append(frame.Failures, model.SymbolFailure{
				Symbol:    s,
				Reason:    err.Error(),
				Transient: !errors.Is(err, ErrNoData),
			})
		}
	}
	return frame, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, window model.TimeRange) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includeAdjustedClose=true&events=div%%2Csplit",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), window.Start.Unix(), window.End.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%s: %w", chart.Chart.Error.Description, ErrNoData)
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := valueAt(quote.Open, i)
		h := valueAt(quote.High, i)
		l := valueAt(quote.Low, i)
		c := valueAt(quote.Close, i)
		if math.IsNaN(o) && math.IsNaN(h) && math.IsNaN(l) && math.IsNaN(c) {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:     model.Date(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			AdjClose: valueAt(adj, i),
			Volume:   valueAt(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
