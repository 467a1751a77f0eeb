package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SRRStocks/internal/cache"
	"SRRStocks/internal/model"
	"SRRStocks/internal/recorder"
)

// Collector orchestrates cached history fetching and normalization.
type Collector struct {
	Fetcher  Fetcher
	Cache    cache.PriceCache
	Recorder recorder.Recorder
	Logger   *zap.Logger
}

// NewCollector creates a new Collector. Nil cache and recorder default to no-ops.
func NewCollector(fetcher Fetcher, c cache.PriceCache, rec recorder.Recorder, logger *zap.Logger) *Collector {
	if c == nil {
		c = cache.Noop{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Fetcher: fetcher, Cache: c, Recorder: rec, Logger: logger}
}

// Collect fetches price history for symbols over window and returns the normalized table.
// An empty symbol list performs no request and returns an empty table.
func (c *Collector) Collect(ctx context.Context, symbols []string, window model.TimeRange) (*model.PriceTable, error) {
	if len(symbols) == 0 {
		return model.NewPriceTable(), nil
	}
	if window.Start.After(window.End) {
		return nil, fmt.Errorf("invalid window: start %s after end %s",
			window.Start.Format(model.DateLayout), window.End.Format(model.DateLayout))
	}

	start := time.Now()
	key := cache.MakeKey(c.Fetcher.Name(), symbols, window)
	frame, cached := c.Cache.Get(ctx, key)
	if !cached {
		var err error
		frame, err = c.Fetcher.FetchHistory(ctx, symbols, window)
		if err != nil {
			c.Logger.Error("History fetch failed",
				zap.String("provider", c.Fetcher.Name()),
				zap.Strings("symbols", symbols),
				zap.Error(err))
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		// Retryable per-symbol errors must not stick for the cache TTL.
		if !frame.HasTransientFailure() {
			c.Cache.Set(ctx, key, frame)
		}
	}

	table := Normalize(frame)

	for _, f := range table.Failures {
		c.Logger.Warn("Symbol returned no data",
			zap.String("symbol", f.Symbol),
			zap.String("reason", f.Reason))
	}
	c.Logger.Debug("History collected",
		zap.String("provider", c.Fetcher.Name()),
		zap.Strings("symbols", symbols),
		zap.Int("rows", table.Len()),
		zap.Bool("cached", cached))

	if err := c.Recorder.RecordFetch(&recorder.FetchEvent{
		Provider: c.Fetcher.Name(),
		Symbols:  symbols,
		Window:   window,
		Rows:     table.Len(),
		Failures: table.Failures,
		Cached:   cached,
		Duration: time.Since(start),
	}); err != nil {
		c.Logger.Error("Record fetch failed", zap.Error(err))
	}

	return table, nil
}
