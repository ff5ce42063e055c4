package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fionafan/callout/internal/warehouse"
)

// queryWarehouseTool runs ad-hoc SQL the model writes itself, for the
// questions the fixed tools do not answer.
type queryWarehouseTool struct {
	w *warehouse.Warehouse
}

func (t *queryWarehouseTool) Name() string { return "query_warehouse" }

func (t *queryWarehouseTool) Description() string {
	return `Execute a custom read-only SQL query against the warehouse.

Use for ad-hoc analysis not covered by other tools:
- Dimensional breakdowns
- Historical comparisons
- Custom metric combinations

Returns results as markdown table.`
}

func (t *queryWarehouseTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "SQL query to execute",
		},
	}, "query")
}

func (t *queryWarehouseTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	table, err := t.w.Query(ctx, in.Query)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return "Query returned no results", nil
	}
	return table.Markdown(), nil
}
