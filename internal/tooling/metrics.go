package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fionafan/callout/internal/experiment"
	"github.com/fionafan/callout/internal/warehouse"
)

const (
	significantMetricsCap = 50
	allMetricsCap         = 100

	statSigPositive = "significant positive"
	statSigNegative = "significant negative"
)

// classifiedRow pairs a result row with the sort keys derived from it.
type classifiedRow struct {
	class     experiment.Class
	cells     []string
	absImpact float64
	impactOK  bool
	overall   bool
	name      string
	variant   string
}

// significantMetricsTool surfaces the statistically significant movers
// for one analysis. Guardrail metrics appear only as safety violations,
// so significant positive guardrail rows are dropped.
type significantMetricsTool struct {
	w *warehouse.Warehouse
}

func (t *significantMetricsTool) Name() string { return "get_significant_metrics" }

func (t *significantMetricsTool) Description() string {
	return `Get significant metrics for a specific experiment.

Returns metrics where stat_sig is 'significant positive' or 'significant negative'.
Metrics are classified as: primary, secondary, or guardrail.

IMPORTANT: For guardrails, ONLY 'significant negative' metrics are returned (safety violations).

Results sorted by metric_type (primary > secondary > guardrail), then by impact magnitude.

Recommended workflow:
1. First call without metric_type to see all significant metrics
2. Or filter by metric_type='primary' for main success metrics
3. Then check metric_type='guardrail' for safety violations`
}

func (t *significantMetricsTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"analysis_id": map[string]interface{}{
			"type":        "string",
			"description": "Analysis ID (UUID format)",
		},
		"metric_type": map[string]interface{}{
			"type":        "string",
			"description": "Filter by metric type (optional). Guardrails only show significant negative.",
			"enum":        []string{"primary", "secondary", "guardrail"},
		},
	}, "analysis_id")
}

func (t *significantMetricsTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		AnalysisID string `json:"analysis_id"`
		MetricType string `json:"metric_type"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	query := fmt.Sprintf(`SELECT
		metric_name,
		dimension_name,
		dimension_cut_name,
		variant_name,
		metric_value,
		metric_impact_relative,
		p_value,
		stat_sig,
		metric_definition,
		metric_desired_direction
	FROM %s
	WHERE analysis_id = ?
	  AND LOWER(variant_name) <> 'control'
	  AND stat_sig IN (?, ?)`, t.w.Tables().Results)

	table, err := t.w.Query(ctx, query, in.AnalysisID, statSigPositive, statSigNegative)
	if err != nil {
		return "", err
	}

	nameCol := table.Col("metric_name")
	cutCol := table.Col("dimension_cut_name")
	variantCol := table.Col("variant_name")
	impactCol := table.Col("metric_impact_relative")
	sigCol := table.Col("stat_sig")

	rows := make([]classifiedRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		class := experiment.Classify(row[nameCol])
		if in.MetricType != "" && string(class) != in.MetricType {
			continue
		}
		if class == experiment.ClassGuardrail && row[sigCol] != statSigNegative {
			continue
		}
		abs, ok := parseAbs(row[impactCol])
		rows = append(rows, classifiedRow{
			class:     class,
			cells:     row,
			absImpact: abs,
			impactOK:  ok,
			overall:   row[cutCol] == "overall",
			name:      row[nameCol],
			variant:   row[variantCol],
		})
	}

	if len(rows) == 0 {
		if in.MetricType != "" {
			return fmt.Sprintf("No significant metrics found (%s)", in.MetricType), nil
		}
		return "No significant metrics found", nil
	}

	sortClassified(rows, true)
	if len(rows) > significantMetricsCap {
		rows = rows[:significantMetricsCap]
	}
	return renderClassified(table.Columns, rows), nil
}

// allMetricsTool returns every metric for one dimension cut, movers
// first, so the model can spot correlated movements and tradeoffs that
// significance filtering would hide.
type allMetricsTool struct {
	w *warehouse.Warehouse
}

func (t *allMetricsTool) Name() string { return "get_all_metrics_for_analysis" }

func (t *allMetricsTool) Description() string {
	return `Get ALL metrics (not just significant ones) for an experiment.

Sorted by impact magnitude (largest movers first) to help identify:
- Metrics moving together (correlated)
- Tradeoff patterns (one up, one down)
- Supporting/conflicting evidence

Use this when you need to see the complete picture:
- After finding significant flags (for context)
- To identify correlation patterns
- To check if related metrics also moved

Returns all metrics for a specific dimension cut (default: overall).`
}

func (t *allMetricsTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"analysis_id": map[string]interface{}{
			"type":        "string",
			"description": "Analysis ID",
		},
		"dimension_cut": map[string]interface{}{
			"type":        "string",
			"description": "Dimension cut name (default: overall)",
		},
	}, "analysis_id")
}

func (t *allMetricsTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		AnalysisID   string `json:"analysis_id"`
		DimensionCut string `json:"dimension_cut"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	cut := strings.TrimSpace(in.DimensionCut)
	if cut == "" {
		cut = "overall"
	}

	query := fmt.Sprintf(`SELECT
		metric_name,
		dimension_cut_name,
		variant_name,
		metric_value,
		metric_impact_relative,
		p_value,
		stat_sig,
		metric_definition,
		metric_desired_direction
	FROM %s
	WHERE analysis_id = ?
	  AND dimension_cut_name = ?
	  AND LOWER(variant_name) <> 'control'`, t.w.Tables().Results)

	table, err := t.w.Query(ctx, query, in.AnalysisID, cut)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return fmt.Sprintf("No metrics found for analysis %s", in.AnalysisID), nil
	}

	nameCol := table.Col("metric_name")
	variantCol := table.Col("variant_name")
	impactCol := table.Col("metric_impact_relative")

	rows := make([]classifiedRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		abs, ok := parseAbs(row[impactCol])
		rows = append(rows, classifiedRow{
			class:     experiment.Classify(row[nameCol]),
			cells:     row,
			absImpact: abs,
			impactOK:  ok,
			name:      row[nameCol],
			variant:   row[variantCol],
		})
	}

	sortClassified(rows, false)
	if len(rows) > allMetricsCap {
		rows = rows[:allMetricsCap]
	}
	return renderClassified(table.Columns, rows), nil
}

// sortClassified orders rows by class, then overall cut first when
// asked, then absolute impact descending with unparsable impacts last,
// then name and variant to keep the output stable.
func sortClassified(rows []classifiedRow, overallFirst bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.class.Rank() != b.class.Rank() {
			return a.class.Rank() < b.class.Rank()
		}
		if overallFirst && a.overall != b.overall {
			return a.overall
		}
		if a.impactOK != b.impactOK {
			return a.impactOK
		}
		if a.impactOK && a.absImpact != b.absImpact {
			return a.absImpact > b.absImpact
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.variant < b.variant
	})
}

func renderClassified(columns []string, rows []classifiedRow) string {
	out := &warehouse.Table{
		Columns: append([]string{"metric_type"}, columns...),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, append([]string{string(r.class)}, r.cells...))
	}
	return out.Markdown()
}

func parseAbs(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return math.Abs(v), true
}
