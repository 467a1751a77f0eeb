package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"SRRStocks/internal/cache"
	"SRRStocks/internal/collector"
	"SRRStocks/internal/config"
	"SRRStocks/internal/logging"
	"SRRStocks/internal/model"
	"SRRStocks/internal/recorder"
	"SRRStocks/internal/selector"
	"SRRStocks/internal/timerange"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	memory    *cache.MemoryCache
	recorder  recorder.Recorder
	collector *collector.Collector
	closers   []func() error
}

// configFlag registers the -config flag shared by all commands.
type configFlag struct {
	path string
}

func (f *configFlag) register(fs *flag.FlagSet) {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	fs.StringVar(&f.path, "config", def, "path to the YAML config file")
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "barsapi":
		fetcher = collector.NewBarsAPIFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.Concurrency)
	}
	logger.Info("Data source selected", zap.String("provider", fetcher.Name()))

	var priceCache cache.PriceCache = cache.Noop{}
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB, cfg.Cache.TTL, logger)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
			rc.Close()
		} else {
			priceCache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}
	if _, isNoop := priceCache.(cache.Noop); isNoop && cfg.Cache.TTL > 0 {
		a.memory = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries)
		priceCache = a.memory
	}
	logger.Info("Price cache selected", zap.String("cache", priceCache.Name()))

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("Init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	a.collector = collector.NewCollector(fetcher, priceCache, a.recorder, logger)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// resolveSelection parses the CLI symbol list and range. Without -symbols the default selection applies.
func (a *app) resolveSelection(symbols, rangeChoice string) ([]string, model.TimeRange, timerange.Choice, error) {
	requested := a.cfg.Dashboard.DefaultSelection
	if symbols != "" {
		parsed := splitSymbols(symbols)
		requested = selector.Select(parsed, parsed)
	}
	choice, err := timerange.Parse(rangeChoice, timerange.Choice(a.cfg.Dashboard.DefaultRange))
	if err != nil {
		return nil, model.TimeRange{}, "", err
	}
	if len(requested) == 0 {
		return nil, model.TimeRange{}, "", fmt.Errorf("no symbols selected")
	}
	return requested, timerange.Resolve(choice, time.Now()), choice, nil
}
