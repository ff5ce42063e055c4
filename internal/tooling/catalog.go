package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fionafan/callout/internal/warehouse"
)

// sourceSQLTool looks a measure's defining SQL up in the source
// catalog.
type sourceSQLTool struct {
	w *warehouse.Warehouse
}

func (t *sourceSQLTool) Name() string { return "find_source_sql" }

func (t *sourceSQLTool) Description() string {
	return `Find source SQL definition for a measure.

Returns:
- Source name
- SQL definition (raw SQL code)
- Lookback period (e.g., 30 days)
- Link to the source catalog entry

Use this to understand:
- What data tables are used
- How the data is filtered/aggregated
- Data freshness (lookback period)

Particularly useful when metric behavior is unexpected.`
}

func (t *sourceSQLTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"measure_id": map[string]interface{}{
			"type":        "string",
			"description": "Measure UUID (from parse_metric_spec output)",
		},
	}, "measure_id")
}

func (t *sourceSQLTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		MeasureID string `json:"measure_id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	query := fmt.Sprintf(`SELECT
		id,
		name,
		description,
		lookback_period,
		lookback_unit,
		sql
	FROM %s
	WHERE id = ?`, t.w.Tables().Sources)

	table, err := t.w.Query(ctx, query, in.MeasureID)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return fmt.Sprintf("No source found for measure ID: %s", in.MeasureID), nil
	}

	row := table.Rows[0]
	cell := func(name string) string { return rowCell(table, row, name) }

	urlLine := ""
	if base := t.w.SourceURLBase(); base != "" {
		urlLine = fmt.Sprintf("\n**URL:** %s%s", base, cell("id"))
	}

	out := fmt.Sprintf(`**Source Name:** %s
**Description:** %s
**Lookback:** %s %s%s

**SQL Definition:**
`+"```sql\n%s\n```",
		cell("name"),
		orNA(cell("description")),
		cell("lookback_period"),
		cell("lookback_unit"),
		urlLine,
		cell("sql"),
	)
	return out, nil
}

// metricDefinitionTool looks a metric up in the metric catalog.
type metricDefinitionTool struct {
	w *warehouse.Warehouse
}

func (t *metricDefinitionTool) Name() string { return "get_metric_definition" }

func (t *metricDefinitionTool) Description() string {
	return `Get complete metric definition from the metric catalog.

Returns:
- Description: What the metric measures
- Spec: How it's calculated (JSON)
- Desired direction: Expected direction of improvement

Use this to understand HOW a metric is calculated and WHAT it means.
Essential for reflection to understand metric relationships.`
}

func (t *metricDefinitionTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"metric_name": map[string]interface{}{
			"type":        "string",
			"description": "Metric name (e.g., 'checkout_conversion', 'mau')",
		},
	}, "metric_name")
}

func (t *metricDefinitionTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		MetricName string `json:"metric_name"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	query := fmt.Sprintf(`SELECT
		name,
		description,
		metric_spec,
		desired_direction
	FROM %s
	WHERE name = ?
	LIMIT 1`, t.w.Tables().Metrics)

	table, err := t.w.Query(ctx, query, in.MetricName)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return fmt.Sprintf("Metric definition not found for: %s", in.MetricName), nil
	}

	row := table.Rows[0]
	cell := func(name string) string { return rowCell(table, row, name) }

	out := fmt.Sprintf(`**Metric:** %s
**Description:** %s
**Desired Direction:** %s

**Specification:**
`+"```json\n%s\n```",
		cell("name"),
		orNA(cell("description")),
		orNA(cell("desired_direction")),
		cell("metric_spec"),
	)
	return out, nil
}
