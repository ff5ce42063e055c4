package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fionafan/callout/internal/experiment"
	"github.com/fionafan/callout/internal/warehouse"
)

// liveExperimentsTool lists every experiment filed under the live view
// for a snapshot date, with the analysis id already extracted from the
// dashboard link so the model never has to parse URLs itself.
type liveExperimentsTool struct {
	w *warehouse.Warehouse
}

func (t *liveExperimentsTool) Name() string { return "get_live_experiments" }

func (t *liveExperimentsTool) Description() string {
	return `Get all live experiments from the experiments snapshot.

Returns experiment metadata including:
- project_name: Experiment name
- brief_summary: Feature description (concise)
- details: Additional context
- analysis_id: Analysis ID (extracted from the iOS results dashboard link)
- project_status: Current status
- rollout_pct: Rollout percentage`
}

func (t *liveExperimentsTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"date": map[string]interface{}{
			"type":        "string",
			"description": "Date in YYYY-MM-DD format (defaults to the latest snapshot date)",
		},
	})
}

func (t *liveExperimentsTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = t.w.MostRecentDate(ctx)
	}

	query := fmt.Sprintf(`SELECT
		project_name,
		brief_summary,
		details,
		status_notes,
		brief_doc_link,
		dashboard_ios,
		dashboard_android,
		project_status,
		rollout_pct,
		updated_at
	FROM %s
	WHERE view_name = ?
	  AND DATE(fetched_at) = ?
	ORDER BY project_name`, t.w.Tables().Experiments)

	table, err := t.w.Query(ctx, query, t.w.LiveView(), date)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return fmt.Sprintf("No live experiments found for %s", date), nil
	}

	iosCol := table.Col("dashboard_ios")
	out := &warehouse.Table{
		Columns: append(append([]string{}, table.Columns...), "analysis_id"),
	}
	for _, row := range table.Rows {
		analysisID := ""
		if iosCol >= 0 {
			analysisID = experiment.ExtractAnalysisID(row[iosCol])
		}
		out.Rows = append(out.Rows, append(append([]string{}, row...), analysisID))
	}

	return out.Markdown(), nil
}

// experimentBriefTool renders the context card for one experiment.
type experimentBriefTool struct {
	w *warehouse.Warehouse
}

func (t *experimentBriefTool) Name() string { return "get_experiment_brief" }

func (t *experimentBriefTool) Description() string {
	return `Get experiment context including feature description.

Returns:
- brief_summary: Concise feature description
- details: Additional context
- Brief doc link, status, rollout %

Use this to understand WHAT the feature does and WHY it exists.
Essential for reflection when metrics show unexpected patterns.`
}

func (t *experimentBriefTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"project_name": map[string]interface{}{
			"type":        "string",
			"description": "Experiment project name",
		},
		"date": map[string]interface{}{
			"type":        "string",
			"description": "Date in YYYY-MM-DD format (defaults to the latest snapshot date)",
		},
	}, "project_name")
}

func (t *experimentBriefTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ProjectName string `json:"project_name"`
		Date        string `json:"date"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = t.w.MostRecentDate(ctx)
	}

	query := fmt.Sprintf(`SELECT
		project_name,
		brief_summary,
		details,
		status_notes,
		brief_doc_link,
		project_status,
		rollout_pct,
		dashboard_ios,
		updated_at
	FROM %s
	WHERE project_name = ?
	  AND view_name = ?
	  AND DATE(fetched_at) = ?
	LIMIT 1`, t.w.Tables().Experiments)

	table, err := t.w.Query(ctx, query, in.ProjectName, t.w.LiveView(), date)
	if err != nil {
		return "", err
	}
	if table.Empty() {
		return fmt.Sprintf("Experiment '%s' not found", in.ProjectName), nil
	}

	row := table.Rows[0]
	cell := func(name string) string { return rowCell(table, row, name) }

	description := cell("brief_summary")
	if description == "" {
		description = cell("details")
	}
	if description == "" {
		description = "No description available"
	}

	statusNotesSection := ""
	if notes := cell("status_notes"); notes != "" {
		statusNotesSection = fmt.Sprintf("\n**Status Notes:**\n%s", notes)
	}

	briefDoc := cell("brief_doc_link")
	if briefDoc == "" {
		briefDoc = "Not available"
	}

	out := fmt.Sprintf(`**Experiment:** %s
**Status:** %s
**Rollout:** %s

**Feature Description:**
%s%s

**Brief Doc:** %s
**Dashboard:** %s
**Last Updated:** %s`,
		cell("project_name"),
		cell("project_status"),
		orNA(cell("rollout_pct")),
		description,
		statusNotesSection,
		briefDoc,
		cell("dashboard_ios"),
		cell("updated_at"),
	)
	return out, nil
}
