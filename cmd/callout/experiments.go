package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fionafan/callout/internal/experiment"
	"github.com/fionafan/callout/internal/warehouse"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "List live experiments",
	Long:  `Lists the experiments that are live in the snapshot for a date, with their rollout and analysis IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		wh, err := warehouse.Open(cfg.Warehouse)
		if err != nil {
			return fmt.Errorf("failed to open warehouse: %w", err)
		}
		defer wh.Close()

		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = wh.MostRecentDate(ctx)
		}

		query := fmt.Sprintf(`
			SELECT project_name, project_status, rollout_pct, dashboard_ios, updated_at
			FROM %s
			WHERE view_name = ? AND DATE(fetched_at) = ?
			ORDER BY project_name`, wh.Tables().Experiments)

		t, err := wh.Query(ctx, query, wh.LiveView(), date)
		if err != nil {
			return fmt.Errorf("failed to list experiments: %w", err)
		}

		if t.Empty() {
			fmt.Printf("No live experiments found for %s\n", date)
			return nil
		}

		fmt.Printf("Live experiments for %s\n\n", date)
		fmt.Println(renderExperimentsTable(experimentRows(t)))
		return nil
	},
}

// experimentRows shapes the snapshot result set into display rows,
// resolving each experiment's analysis ID from its dashboard link.
func experimentRows(t *warehouse.Table) [][]string {
	name := t.Col("project_name")
	status := t.Col("project_status")
	rollout := t.Col("rollout_pct")
	dashboard := t.Col("dashboard_ios")
	updated := t.Col("updated_at")

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		analysisID := experiment.ExtractAnalysisID(cellAt(row, dashboard))
		if analysisID == "" {
			analysisID = "-"
		}
		pct := cellAt(row, rollout)
		if pct == "" {
			pct = "-"
		}

		rows = append(rows, []string{
			truncateCell(cellAt(row, name), 40),
			cellAt(row, status),
			pct,
			analysisID,
			cellAt(row, updated),
		})
	}
	return rows
}

func renderExperimentsTable(rows [][]string) string {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Align(lipgloss.Center).
		Padding(0, 1)
	oddRowStyle := lipgloss.NewStyle().
		Foreground(gray).
		Padding(0, 1)
	evenRowStyle := lipgloss.NewStyle().
		Foreground(lightGray).
		Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("Experiment", "Status", "Rollout", "Analysis ID", "Updated")

	for _, row := range rows {
		t.Row(row...)
	}
	return t.String()
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func truncateCell(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	rootCmd.AddCommand(experimentsCmd)
	experimentsCmd.Flags().String("date", "", "Snapshot date in YYYY-MM-DD format (defaults to the latest snapshot date)")
}
