package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fionafan/callout/internal/config"
	calloutErrors "github.com/fionafan/callout/internal/errors"
)

// Warehouse wraps the analytics database the tools read from. The
// default driver is the embedded sqlite mirror; deployments point the
// same boundary at their real warehouse through config.
type Warehouse struct {
	db            *sql.DB
	queryTimeout  time.Duration
	liveView      string
	sourceURLBase string
	tables        config.TablesConfig
}

// Open connects using the configured driver and DSN.
func Open(cfg config.WarehouseConfig) (*Warehouse, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// WAL mode for better concurrent reads.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	timeout, err := config.DurationOrDefault(cfg.QueryTimeout, config.DefaultWarehouseQueryTimeout)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parse warehouse query timeout: %w", err)
	}

	return &Warehouse{
		db:            db,
		queryTimeout:  timeout,
		liveView:      cfg.LiveView,
		sourceURLBase: cfg.SourceURLBase,
		tables:        cfg.Tables,
	}, nil
}

func (w *Warehouse) Close() error {
	return w.db.Close()
}

func (w *Warehouse) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.queryTimeout)
	defer cancel()
	if err := w.db.PingContext(ctx); err != nil {
		return calloutErrors.Wrap(calloutErrors.Classify(err), "warehouse ping")
	}
	return nil
}

// Tables exposes the configured table names so callers can compose
// queries without hardcoding the deployment's naming.
func (w *Warehouse) Tables() config.TablesConfig {
	return w.tables
}

// LiveView is the snapshot view name live experiments are filed under.
func (w *Warehouse) LiveView() string {
	return w.liveView
}

// SourceURLBase is the catalog UI prefix for source detail pages, or
// empty when the deployment has none.
func (w *Warehouse) SourceURLBase() string {
	return w.sourceURLBase
}

// Query runs a read query and captures every row as strings, preserving
// the column order of the select list. NULL cells come back empty.
func (w *Warehouse) Query(ctx context.Context, query string, args ...interface{}) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, w.queryTimeout)
	defer cancel()

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, calloutErrors.Wrap(err, "warehouse query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, calloutErrors.Wrap(err, "read result columns")
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, calloutErrors.Wrap(err, "scan result row")
		}

		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, calloutErrors.Wrap(err, "iterate result rows")
	}
	return table, nil
}

// Exec runs a statement that returns no rows.
func (w *Warehouse) Exec(ctx context.Context, query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, w.queryTimeout)
	defer cancel()

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return calloutErrors.Wrap(err, "warehouse exec")
	}
	return nil
}

// MostRecentDate returns the latest ingest date present in the
// experiments snapshot, as YYYY-MM-DD. The daily pipeline keys off this
// so a late snapshot still gets analyzed. Falls back to today when the
// table is empty or unreachable.
func (w *Warehouse) MostRecentDate(ctx context.Context) string {
	query := fmt.Sprintf(
		"SELECT MAX(DATE(fetched_at)) FROM %s WHERE view_name = ?",
		w.tables.Experiments,
	)

	table, err := w.Query(ctx, query, w.liveView)
	if err != nil {
		slog.Warn("Could not resolve most recent ingest date, using today", "error", err)
		return time.Now().Format("2006-01-02")
	}
	if table.Empty() || table.Rows[0][0] == "" {
		return time.Now().Format("2006-01-02")
	}

	date := table.Rows[0][0]
	if len(date) > 10 {
		date = date[:10]
	}
	return date
}
