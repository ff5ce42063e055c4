package main

import (
	"fmt"
	"os"

	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "callout",
	Short: "Experiment callout agent",
	Long:  `Callout investigates live A/B experiments in the analytics warehouse and writes a daily narrative report of the significant movements.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.callout/config.yaml)")
	rootCmd.PersistentFlags().String("log_level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
}
