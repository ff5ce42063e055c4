package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fionafan/callout/internal/callout"
	"github.com/fionafan/callout/internal/scheduler"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daily callout on a schedule",
	Long:  `Stays resident and generates the daily callout at every scheduled time until interrupted. Each run targets the latest snapshot date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		post, _ := cmd.Flags().GetBool("post")
		if post && !cfg.Slack.Enabled {
			slog.Warn("Slack posting requested but slack.enabled is false, callouts will not be posted")
		}

		job := func(jobCtx context.Context) error {
			res, err := a.service.RunDaily(jobCtx, callout.DailyOptions{
				Save:    cfg.Report.Enabled,
				Archive: cfg.Archive.Enabled,
				Post:    post,
			})
			if err != nil {
				return err
			}
			slog.Info("Daily callout finished",
				"date", res.Date,
				"model", a.modelName,
				"state", res.State,
				"iterations", res.Iterations,
				"tool_calls", res.ToolCalls,
				"duration", res.Duration.Round(time.Millisecond),
			)
			return nil
		}

		w, err := scheduler.NewWatcher(cfg.Schedule.Cron, job)
		if err != nil {
			return err
		}
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("model", "", "Model to run the investigations with")
	watchCmd.Flags().Bool("fast", false, "Use the configured fast model")
	watchCmd.Flags().Bool("post", false, "Post each callout to Slack")
}
