package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"

	"SRRStocks/internal/model"
)

// MockFetcher returns controllable generated data for development and testing.
type MockFetcher struct {
	Prices  map[string]float64 // base price per symbol; unknown symbols get a derived price
	Missing map[string]bool    // symbols reported as having no data
	Err     error              // returned for every call when set

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchHistory ran.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchHistory(ctx context.Context, symbols []string, window model.TimeRange) (*model.PriceFrame, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	bars := make(map[string][]model.OHLCV, len(symbols))
	var failures []model.SymbolFailure
	for _, s := range symbols {
		if m.Missing[s] {
			failures = append(failures, model.SymbolFailure{Symbol: s, Reason: ErrNoData.Error()})
			continue
		}
		bars[s] = generateMockBars(m.basePrice(s), window)
	}
	frame := model.MergeBars(symbols, bars, false)
	frame.Failures = failures
	return frame, nil
}

func (m *MockFetcher) basePrice(symbol string) float64 {
	if p, ok := m.Prices[symbol]; ok {
		return p
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 50 + float64(h.Sum32()%950)
}

// generateMockBars emits one bar per weekday in [window.Start, window.End).
func generateMockBars(basePrice float64, window model.TimeRange) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := window.Start; d.Before(window.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == 0 || wd == 6 {
			continue
		}
		p := basePrice * (1 + 0.02*math.Sin(float64(i)/5))
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: math.NaN(),
			Volume:   1000000 + float64(i%7)*25000,
		})
		i++
	}
	return bars
}
