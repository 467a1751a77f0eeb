package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"SRRStocks/internal/calculator"
	"SRRStocks/internal/export"
	"SRRStocks/internal/model"
	"SRRStocks/internal/scheduler"
	"SRRStocks/internal/web"
)

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type serveCmd struct {
	cfg      configFlag
	addr     string
	snapshot bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the dashboard web server" }
func (*serveCmd) Usage() string {
	return `srrstocks serve [-config <path>] [-addr host:port] [-snapshot]

  Serves the dashboard and runs the watchlist snapshot schedule.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.register(f)
	f.StringVar(&c.addr, "addr", "", "listen address (overrides server.host and server.port)")
	f.BoolVar(&c.snapshot, "snapshot", os.Getenv("RUN_ON_START") == "true", "record a watchlist snapshot on start")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, c.cfg.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	addr := a.cfg.Addr()
	if c.addr != "" {
		addr = c.addr
	}
	srv, err := web.New(web.Options{
		Addr:      addr,
		Catalog:   a.cfg.Catalog(),
		Collector: a.collector,
		Recorder:  a.recorder,
		Logger:    a.logger,
	})
	if err != nil {
		a.logger.Error("Create server failed", zap.Error(err))
		return subcommands.ExitFailure
	}

	sched := scheduler.NewScheduler(ctx, a.collector, a.recorder, a.cfg.Dashboard.Watchlist, a.logger)
	if a.memory != nil {
		sched.Cache = a.memory
	}
	if a.cfg.Schedule.SnapshotCron != "" {
		if err := sched.RegisterAll(a.cfg.Schedule.SnapshotCron); err != nil {
			a.logger.Error("Register cron tasks failed", zap.Error(err))
			return subcommands.ExitFailure
		}
		sched.Start()
		defer sched.Stop()
	}
	if c.snapshot {
		go func() {
			if _, err := sched.RunSnapshotNow(); err != nil {
				a.logger.Error("Startup snapshot failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Server stopped", zap.Error(err))
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	case <-quit:
	}

	a.logger.Info("Shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type fetchCmd struct {
	cfg     configFlag
	symbols string
	rng     string
	rows    int
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch price history and print a preview" }
func (*fetchCmd) Usage() string {
	return `srrstocks fetch [-symbols AAPL,MSFT] [-range 1M] [-n 5]

  Fetches history for the symbols and prints the first rows and a summary.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.register(f)
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols (defaults to the dashboard selection)")
	f.StringVar(&c.rng, "range", "", "time range: 1D, 1M, 3M, 6M or 1Y")
	f.IntVar(&c.rows, "n", 5, "number of rows to print")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, c.cfg.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	symbols, window, _, err := a.resolveSelection(c.symbols, c.rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	table, err := a.collector.Collect(ctx, symbols, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printTable(table, symbols, c.rows)
	return subcommands.ExitSuccess
}

func printTable(table *model.PriceTable, symbols []string, n int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Date\t%s\t\n", strings.Join(table.Order, "\t"))
	for _, row := range table.Head(n) {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = fmt.Sprintf("%.2f", v)
		}
		fmt.Fprintf(w, "%s\t%s\t\n", row.Date.Format(model.DateLayout), strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Stock\tDays\tAvg Close\tHigh\tLow\tLast\tChange %\t")
	for _, s := range calculator.Summarize(table, table.Present(symbols)) {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%+.2f\t\n",
			s.Symbol, s.Observations, s.MeanClose, s.High, s.Low, s.LastClose, s.ChangePercent)
	}
	w.Flush()

	for _, fail := range table.Failures {
		fmt.Fprintf(os.Stderr, "warning: no data for %s: %s\n", fail.Symbol, fail.Reason)
	}
}

type exportCmd struct {
	cfg     configFlag
	symbols string
	rng     string
	out     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export price history to a Parquet file" }
func (*exportCmd) Usage() string {
	return `srrstocks export [-symbols AAPL,MSFT] [-range 1Y] -o history.parquet

  Writes one row per date and symbol.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.register(f)
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols (defaults to the dashboard selection)")
	f.StringVar(&c.rng, "range", "", "time range: 1D, 1M, 3M, 6M or 1Y")
	f.StringVar(&c.out, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx, c.cfg.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	symbols, window, _, err := a.resolveSelection(c.symbols, c.rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	table, err := a.collector.Collect(ctx, symbols, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	rows := export.Rows(table, symbols)
	if err := export.WriteFile(c.out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %d rows to %s\n", len(rows), c.out)
	return subcommands.ExitSuccess
}

type snapshotCmd struct {
	cfg configFlag
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record the latest close of every watchlist symbol" }
func (*snapshotCmd) Usage() string {
	return `srrstocks snapshot [-config <path>]

  Runs the watchlist snapshot job once.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) { c.cfg.register(f) }

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, c.cfg.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sched := scheduler.NewScheduler(ctx, a.collector, a.recorder, a.cfg.Dashboard.Watchlist, a.logger)
	snaps, err := sched.RunSnapshotNow()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range snaps {
		fmt.Printf("%-14s %s %10.2f\n", s.Symbol, s.Date.Format(model.DateLayout), s.Close)
	}
	return subcommands.ExitSuccess
}
