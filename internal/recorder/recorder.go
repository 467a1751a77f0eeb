package recorder

import (
	"time"

	"SRRStocks/internal/model"
)

// FetchEvent describes one history request served by the collector.
type FetchEvent struct {
	Provider string
	Symbols  []string
	Window   model.TimeRange
	Rows     int
	Failures []model.SymbolFailure
	Cached   bool
	Duration time.Duration
}

// Snapshot is the latest observed close for a watchlist symbol.
type Snapshot struct {
	Symbol     string
	Date       time.Time
	Close      float64
	Volume     float64
	RecordedAt time.Time
}

// Recorder persists the fetch log and watchlist snapshots.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordSnapshots(snaps []Snapshot) error
	LatestSnapshots() (map[string]Snapshot, error)
	Close() error
}
