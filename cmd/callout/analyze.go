package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-name> <analysis-id>",
	Short: "Deep-dive a single experiment",
	Long:  `Runs a focused investigation of one experiment and prints the analysis. Nothing is saved, archived, or posted.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.service.Analyze(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(res.FinalText)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("model", "", "Model to run the investigation with")
	analyzeCmd.Flags().Bool("fast", false, "Use the configured fast model")
}
