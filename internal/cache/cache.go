// Package cache keeps recently fetched price frames so repeated page renders within the
// TTL do not hit the provider again.
package cache

import (
	"context"
	"strings"
	"time"

	"SRRStocks/internal/model"
)

// PriceCache stores provider frames by request key.
type PriceCache interface {
	Get(ctx context.Context, key string) (*model.PriceFrame, bool)
	Set(ctx context.Context, key string, frame *model.PriceFrame)
	Name() string
}

// MakeKey builds a cache key from provider, symbols and window.
func MakeKey(provider string, symbols []string, window model.TimeRange) string {
	return provider + ":" + strings.Join(symbols, ",") + ":" +
		window.Start.Format(model.DateLayout) + ":" + window.End.Format(model.DateLayout)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*model.PriceFrame, bool) { return nil, false }
func (Noop) Set(context.Context, string, *model.PriceFrame)        {}
func (Noop) Name() string                                          { return "none" }

// entry wraps a cached frame with expiry and insertion order tracking.
type entry struct {
	frame     *model.PriceFrame
	expiry    time.Time
	insertIdx int64
}
