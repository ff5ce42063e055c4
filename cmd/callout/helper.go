package main

import (
	"fmt"

	"github.com/fionafan/callout/internal/agent"
	"github.com/fionafan/callout/internal/callout"
	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/egress"
	"github.com/fionafan/callout/internal/model"
	"github.com/fionafan/callout/internal/tooling"
	"github.com/fionafan/callout/internal/warehouse"

	"github.com/spf13/cobra"
)

// app bundles the wired components behind one command invocation.
type app struct {
	warehouse *warehouse.Warehouse
	service   *callout.Service
	modelName string
}

func (a *app) Close() {
	if a.warehouse != nil {
		a.warehouse.Close()
	}
}

func buildApp(cmd *cobra.Command) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	modelName := resolveModelName(cmd, cfg)

	wh, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}

	registry, err := tooling.Build(wh)
	if err != nil {
		wh.Close()
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	client, err := model.NewRouter(cfg.Models)
	if err != nil {
		wh.Close()
		return nil, fmt.Errorf("failed to initialize model router: %w", err)
	}

	runner := agent.New(client, registry, modelName, cfg.Agent)

	var notifier egress.Notifier
	if cfg.Slack.Enabled {
		notifier, err = egress.NewSlackNotifier(cfg.Slack)
		if err != nil {
			wh.Close()
			return nil, fmt.Errorf("failed to configure Slack notifier: %w", err)
		}
	}

	service, err := callout.NewService(runner, wh, notifier, modelName, cfg)
	if err != nil {
		wh.Close()
		return nil, err
	}

	return &app{warehouse: wh, service: service, modelName: modelName}, nil
}

// resolveModelName picks the model for this invocation. Precedence:
// --fast, then an explicit --model, then the configured default.
func resolveModelName(cmd *cobra.Command, cfg *config.Config) string {
	if cmd != nil {
		if fast, _ := cmd.Flags().GetBool("fast"); fast {
			return cfg.Models.Fast
		}
		if flag := cmd.Flags().Lookup("model"); flag != nil && flag.Changed {
			return flag.Value.String()
		}
	}
	return cfg.Models.Default
}
