package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"SRRStocks/internal/collector"
	"SRRStocks/internal/model"
	"SRRStocks/internal/recorder"
)

// snapshotLookback covers a long weekend plus a market holiday.
const snapshotLookback = 5

// Purger is implemented by caches that can drop expired entries.
type Purger interface {
	Purge() int
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Watchlist []string
	Cache     Purger
	Logger    *zap.Logger
	Ctx       context.Context
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, watchlist []string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Watchlist: watchlist,
		Logger:    logger,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterAll registers the watchlist snapshot and, when a cache is set, an hourly purge.
func (s *Scheduler) RegisterAll(snapshotCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if s.Cache != nil {
		if _, err := s.Cron.AddFunc("0 0 * * * *", func() {
			n := s.Cache.Purge()
			s.Logger.Debug("Cache purged", zap.Int("removed", n))
		}); err != nil {
			return fmt.Errorf("register cache purge: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("Scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("Scheduler stopped")
}

// RunSnapshotNow executes the snapshot task immediately and returns what it recorded.
func (s *Scheduler) RunSnapshotNow() ([]recorder.Snapshot, error) {
	return s.snapshot(s.Ctx)
}

func (s *Scheduler) snapshotTask() {
	if _, err := s.snapshot(s.Ctx); err != nil {
		s.Logger.Error("Watchlist snapshot failed", zap.Error(err))
	}
}

func (s *Scheduler) snapshot(ctx context.Context) ([]recorder.Snapshot, error) {
	if len(s.Watchlist) == 0 {
		return nil, nil
	}
	now := s.Now()
	end := model.Date(now).AddDate(0, 0, 1)
	window := model.TimeRange{Start: end.AddDate(0, 0, -snapshotLookback-1), End: end}

	table, err := s.Collector.Collect(ctx, s.Watchlist, window)
	if err != nil {
		return nil, fmt.Errorf("collect watchlist: %w", err)
	}

	snaps := LatestCloses(table, s.Watchlist, now)
	if err := s.Recorder.RecordSnapshots(snaps); err != nil {
		return snaps, fmt.Errorf("record snapshots: %w", err)
	}
	s.Logger.Info("Watchlist snapshot recorded",
		zap.Int("symbols", len(snaps)),
		zap.Int("requested", len(s.Watchlist)))
	return snaps, nil
}

// LatestCloses picks the last valid close of each symbol in the table.
func LatestCloses(table *model.PriceTable, symbols []string, recordedAt time.Time) []recorder.Snapshot {
	var out []recorder.Snapshot
	for _, sym := range symbols {
		closes, err := table.Series(model.FieldClose, sym)
		if err != nil {
			continue
		}
		volumes, _ := table.Series(model.FieldVolume, sym)
		for i := len(closes) - 1; i >= 0; i-- {
			if math.IsNaN(closes[i]) {
				continue
			}
			snap := recorder.Snapshot{
				Symbol:     sym,
				Date:       table.Dates[i],
				Close:      closes[i],
				RecordedAt: recordedAt,
			}
			if i < len(volumes) && !math.IsNaN(volumes[i]) {
				snap.Volume = volumes[i]
			}
			out = append(out, snap)
			break
		}
	}
	return out
}
