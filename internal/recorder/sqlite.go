package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"SRRStocks/internal/model"
)

// SQLiteRecorder persists the fetch log and snapshots to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("SQLite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			provider    TEXT,
			symbols     TEXT,
			start_date  TEXT,
			end_date    TEXT,
			rows        INTEGER,
			failures    TEXT,
			cached      INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_ts ON fetch_log(timestamp)`,

		`CREATE TABLE IF NOT EXISTS watchlist_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			trade_date  TEXT NOT NULL,
			close       REAL,
			volume      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_symbol ON watchlist_snapshots(symbol, recorded_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	failures := make([]string, len(evt.Failures))
	for i, f := range evt.Failures {
		failures[i] = f.Symbol + ": " + f.Reason
	}
	cached := 0
	if evt.Cached {
		cached = 1
	}

	_, err := r.db.Exec(`INSERT INTO fetch_log
		(timestamp, provider, symbols, start_date, end_date, rows, failures, cached, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Provider, strings.Join(evt.Symbols, ","),
		evt.Window.Start.Format(model.DateLayout), evt.Window.End.Format(model.DateLayout),
		evt.Rows, strings.Join(failures, "; "), cached, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshots(snaps []Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO watchlist_snapshots
		(recorded_at, symbol, trade_date, close, volume) VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range snaps {
		recorded := s.RecordedAt
		if recorded.IsZero() {
			recorded = time.Now()
		}
		if _, err := stmt.Exec(recorded.UnixNano(), s.Symbol, s.Date.Format(model.DateLayout), s.Close, s.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

// LatestSnapshots returns the most recently recorded snapshot per symbol.
func (r *SQLiteRecorder) LatestSnapshots() (map[string]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT s.symbol, s.trade_date, s.close, s.volume, s.recorded_at
		FROM watchlist_snapshots s
		JOIN (SELECT symbol, MAX(recorded_at) AS latest FROM watchlist_snapshots GROUP BY symbol) m
		  ON s.symbol = m.symbol AND s.recorded_at = m.latest`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Snapshot)
	for rows.Next() {
		var (
			s        Snapshot
			date     string
			recorded int64
		)
		if err := rows.Scan(&s.Symbol, &date, &s.Close, &s.Volume, &recorded); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if d, err := time.Parse(model.DateLayout, date); err == nil {
			s.Date = d
		}
		s.RecordedAt = time.Unix(0, recorded)
		out[s.Symbol] = s
	}
	return out, rows.Err()
}

// FetchCount returns the number of fetch log rows.
func (r *SQLiteRecorder) FetchCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM fetch_log`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("Closing SQLite recorder")
	return r.db.Close()
}
