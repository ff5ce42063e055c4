package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fionafan/callout/internal/config"
)

func openTestWarehouse(t *testing.T) *Warehouse {
	t.Helper()

	w, err := Open(config.WarehouseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		QueryTimeout: "5s",
		LiveView:     config.DefaultLiveView,
		Tables: config.TablesConfig{
			Experiments: config.DefaultExperimentsTable,
			Results:     config.DefaultResultsTable,
			Metrics:     config.DefaultMetricsTable,
			Sources:     config.DefaultSourcesTable,
			Callouts:    config.DefaultCalloutsTable,
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestQueryPreservesColumnOrderAndNulls(t *testing.T) {
	w := openTestWarehouse(t)
	ctx := context.Background()

	require.NoError(t, w.Exec(ctx, `CREATE TABLE sample (name TEXT, impact REAL, n INTEGER)`))
	require.NoError(t, w.Exec(ctx, `INSERT INTO sample VALUES ('order_rate', 0.05, NULL)`))
	require.NoError(t, w.Exec(ctx, `INSERT INTO sample VALUES (NULL, NULL, 42)`))

	table, err := w.Query(ctx, `SELECT name, impact, n FROM sample ORDER BY name`)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "impact", "n"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"", "", "42"}, table.Rows[0])
	assert.Equal(t, []string{"order_rate", "0.05", ""}, table.Rows[1])
	assert.False(t, table.Empty())
}

func TestQueryEmptyResult(t *testing.T) {
	w := openTestWarehouse(t)
	ctx := context.Background()

	require.NoError(t, w.Exec(ctx, `CREATE TABLE sample (name TEXT)`))

	table, err := w.Query(ctx, `SELECT name FROM sample`)
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Equal(t, []string{"name"}, table.Columns)
}

func TestQueryError(t *testing.T) {
	w := openTestWarehouse(t)

	_, err := w.Query(context.Background(), `SELECT broken FROM missing_table`)
	require.Error(t, err)
}

func TestTableMarkdown(t *testing.T) {
	table := &Table{
		Columns: []string{"metric_name", "impact"},
		Rows: [][]string{
			{"orders|total", "+2.1%"},
			{"line1\nline2", ""},
		},
	}

	want := "| metric_name | impact |\n" +
		"| --- | --- |\n" +
		"| orders\\|total | +2.1% |\n" +
		"| line1 line2 |  |"
	assert.Equal(t, want, table.Markdown())
}

func TestMostRecentDate(t *testing.T) {
	w := openTestWarehouse(t)
	ctx := context.Background()

	require.NoError(t, w.Exec(ctx, `CREATE TABLE experiment_snapshots (project_name TEXT, view_name TEXT, fetched_at TEXT)`))
	require.NoError(t, w.Exec(ctx, `INSERT INTO experiment_snapshots VALUES ('a', 'Live Experiments', '2026-08-20 09:00:00')`))
	require.NoError(t, w.Exec(ctx, `INSERT INTO experiment_snapshots VALUES ('b', 'Live Experiments', '2026-08-22 09:00:00')`))
	require.NoError(t, w.Exec(ctx, `INSERT INTO experiment_snapshots VALUES ('c', 'Other View', '2026-08-25 09:00:00')`))

	assert.Equal(t, "2026-08-22", w.MostRecentDate(ctx))
}

func TestMostRecentDateFallsBackToToday(t *testing.T) {
	w := openTestWarehouse(t)
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	// Table missing entirely: query fails, fallback applies.
	assert.Equal(t, today, w.MostRecentDate(ctx))

	// Table present but empty: MAX() is NULL, fallback applies.
	require.NoError(t, w.Exec(ctx, `CREATE TABLE experiment_snapshots (project_name TEXT, view_name TEXT, fetched_at TEXT)`))
	assert.Equal(t, today, w.MostRecentDate(ctx))
}

func TestOpenRejectsBadTimeout(t *testing.T) {
	_, err := Open(config.WarehouseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		QueryTimeout: "soon",
	})
	require.Error(t, err)
}
