package callout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fionafan/callout/internal/warehouse"
)

const archiveSchema = `CREATE TABLE IF NOT EXISTS %s (
	callout_id TEXT PRIMARY KEY,
	callout_date TEXT NOT NULL,
	full_callout TEXT,
	model_used TEXT,
	generation_time_seconds REAL,
	tool_calls_count INTEGER,
	iterations_count INTEGER,
	generated_at TEXT
)`

// Entry is one archived callout. A date holds at most one entry, so a
// rerun replaces what the earlier run stored.
type Entry struct {
	CalloutID   string
	Date        string
	Text        string
	Model       string
	Seconds     float64
	ToolCalls   int
	Iterations  int
	GeneratedAt time.Time
}

// Archive persists finished callouts back into the warehouse so the
// history is queryable next to the experiment results themselves.
type Archive struct {
	w *warehouse.Warehouse
}

func NewArchive(w *warehouse.Warehouse) *Archive {
	return &Archive{w: w}
}

// Save replaces any existing callout for the entry's date.
func (a *Archive) Save(ctx context.Context, e Entry) error {
	table := a.w.Tables().Callouts

	if err := a.w.Exec(ctx, fmt.Sprintf(archiveSchema, table)); err != nil {
		return fmt.Errorf("ensure callout table: %w", err)
	}

	if err := a.w.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE callout_date = ?", table), e.Date); err != nil {
		return fmt.Errorf("replace callout for %s: %w", e.Date, err)
	}

	if e.CalloutID == "" {
		e.CalloutID = ulid.Make().String()
	}
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now().UTC()
	}

	insert := fmt.Sprintf(`INSERT INTO %s
		(callout_id, callout_date, full_callout, model_used, generation_time_seconds, tool_calls_count, iterations_count, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table)
	err := a.w.Exec(ctx, insert,
		e.CalloutID, e.Date, e.Text, e.Model, e.Seconds, e.ToolCalls, e.Iterations,
		e.GeneratedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert callout for %s: %w", e.Date, err)
	}

	slog.Info("Callout archived", "date", e.Date, "table", table, "callout_id", e.CalloutID)
	return nil
}
