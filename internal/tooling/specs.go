package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fionafan/callout/internal/experiment"
)

// parseMetricSpecTool is the one pure tool: it never touches the
// warehouse, it just decodes a spec document the model already holds.
type parseMetricSpecTool struct{}

func (t *parseMetricSpecTool) Name() string { return "parse_metric_spec" }

func (t *parseMetricSpecTool) Description() string {
	return `Parse metric_spec JSON to understand metric composition.

Returns:
- Metric type (SIMPLE, RATIO, FUNNEL)
- Component measures with IDs, names, and aggregations
- Numerator/denominator for ratio metrics
- Funnel steps for funnel metrics

Use this when you need to understand HOW a metric is calculated.
Measure IDs can be used with find_source_sql() to get data sources.`
}

func (t *parseMetricSpecTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"spec_json": map[string]interface{}{
			"type":        "string",
			"description": "Metric spec JSON string from metric_spec column",
		},
	}, "spec_json")
}

func (t *parseMetricSpecTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		SpecJSON string `json:"spec_json"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	breakdown, err := experiment.ParseSpec(in.SpecJSON)
	if err != nil {
		return "", err
	}
	return breakdown.Render()
}
