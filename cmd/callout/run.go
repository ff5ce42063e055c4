package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fionafan/callout/internal/callout"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the daily experiment callout",
	Long:  `Runs one bounded agent investigation over the live experiments and prints the resulting callout. The report is saved and archived unless disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		date, _ := cmd.Flags().GetString("date")
		noSave, _ := cmd.Flags().GetBool("no-save")
		noArchive, _ := cmd.Flags().GetBool("no-archive")
		post, _ := cmd.Flags().GetBool("post")

		if post && !cfg.Slack.Enabled {
			slog.Warn("Slack posting requested but slack.enabled is false, the callout will not be posted")
		}

		res, err := a.service.RunDaily(ctx, callout.DailyOptions{
			Date:    date,
			Save:    cfg.Report.Enabled && !noSave,
			Archive: cfg.Archive.Enabled && !noArchive,
			Post:    post,
		})
		if err != nil {
			return err
		}

		fmt.Println(res.Callout)

		slog.Info("Daily callout finished",
			"date", res.Date,
			"model", a.modelName,
			"state", res.State,
			"iterations", res.Iterations,
			"tool_calls", res.ToolCalls,
			"duration", res.Duration.Round(time.Millisecond),
		)
		if res.ReportPath != "" {
			slog.Info("Report saved", "path", res.ReportPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("date", "", "Callout date in YYYY-MM-DD format (defaults to the latest snapshot date)")
	runCmd.Flags().String("model", "", "Model to run the investigation with")
	runCmd.Flags().Bool("fast", false, "Use the configured fast model")
	runCmd.Flags().Bool("no-save", false, "Skip writing the report file")
	runCmd.Flags().Bool("no-archive", false, "Skip archiving the callout to the warehouse")
	runCmd.Flags().Bool("post", false, "Post the callout to Slack")
}
