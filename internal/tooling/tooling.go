// Package tooling assembles the closed catalog of investigation tools
// the analyst agent works with. Seven tools read the warehouse, one is
// a pure transform; the registry is built once at startup.
package tooling

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fionafan/callout/internal/tool"
	"github.com/fionafan/callout/internal/warehouse"
)

func Build(w *warehouse.Warehouse) (*tool.Registry, error) {
	if w == nil {
		return nil, fmt.Errorf("warehouse cannot be nil")
	}

	registry := tool.NewRegistry()

	tools := []tool.Tool{
		&liveExperimentsTool{w: w},
		&significantMetricsTool{w: w},
		&allMetricsTool{w: w},
		&parseMetricSpecTool{},
		&sourceSQLTool{w: w},
		&queryWarehouseTool{w: w},
		&experimentBriefTool{w: w},
		&metricDefinitionTool{w: w},
	}
	for _, t := range tools {
		registry.Register(t)
	}
	slog.Info("Warehouse tools registered", "count", len(tools))

	return registry, nil
}

// objectSchema builds the parameter schema shape every tool shares.
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// rowCell reads a named column from a row, empty when the column is
// absent.
func rowCell(t *warehouse.Table, row []string, name string) string {
	i := t.Col(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}
