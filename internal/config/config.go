package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/fionafan/callout/internal/pathutil"
)

type Config struct {
	LogLevel  string          `koanf:"log_level"`
	Agent     AgentConfig     `koanf:"agent"`
	Models    ModelsConfig    `koanf:"models"`
	Prompts   PromptsConfig   `koanf:"prompts"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Report    ReportConfig    `koanf:"report"`
	Archive   ArchiveConfig   `koanf:"archive"`
	Slack     SlackConfig     `koanf:"slack"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Lock      LockConfig      `koanf:"lock"`
}

type AgentConfig struct {
	MaxIterations int `koanf:"max_iterations"`
	MaxToolCalls  int `koanf:"max_tool_calls"`
}

type ModelsConfig struct {
	Default  string          `koanf:"default"`
	Fast     string          `koanf:"fast"`
	BaseURL  string          `koanf:"base_url"`
	Registry []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name     string `koanf:"name"`
	Provider string `koanf:"provider"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

type PromptsConfig struct {
	System string `koanf:"system"`
}

type WarehouseConfig struct {
	Driver        string       `koanf:"driver"`
	DSN           string       `koanf:"dsn"`
	QueryTimeout  string       `koanf:"query_timeout"`
	LiveView      string       `koanf:"live_view"`
	SourceURLBase string       `koanf:"source_url_base"`
	Tables        TablesConfig `koanf:"tables"`
}

type TablesConfig struct {
	Experiments string `koanf:"experiments"`
	Results     string `koanf:"results"`
	Metrics     string `koanf:"metrics"`
	Sources     string `koanf:"sources"`
	Callouts    string `koanf:"callouts"`
}

type ReportConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type ArchiveConfig struct {
	Enabled bool `koanf:"enabled"`
}

type SlackConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	Channel  string `koanf:"channel"`
}

type ScheduleConfig struct {
	Cron string `koanf:"cron"`
}

type LockConfig struct {
	Path     string `koanf:"path"`
	Retry    string `koanf:"retry"`
	MaxRetry int    `koanf:"max_retry"`
}

const (
	DefaultLogLevel              = "info"
	DefaultAgentMaxIterations    = 20
	DefaultAgentMaxToolCalls     = 30
	DefaultModel                 = "gpt-5.2"
	DefaultFastModel             = "gpt-4o"
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultWarehouseDriver       = "sqlite"
	DefaultWarehouseQueryTimeout = "60s"
	DefaultLiveView              = "Live Experiments"
	DefaultExperimentsTable      = "experiment_snapshots"
	DefaultResultsTable          = "analysis_results_daily"
	DefaultMetricsTable          = "metric_catalog"
	DefaultSourcesTable          = "source_catalog"
	DefaultCalloutsTable         = "experiment_callouts"
	DefaultReportDir             = "."
	DefaultScheduleCron          = "0 9 * * *"
	DefaultLockRetry             = "100ms"
	DefaultLockMaxRetry          = 50
	DefaultSystemPrompt          = `You are a senior experiment analyst generating daily callouts for the growth team.

Your job is to review live A/B experiments and surface what matters:
- Prioritize primary metrics over secondary metrics over guardrails.
- Only call out statistically significant movements. Skip experiments with nothing significant.
- Guardrails matter only when they are significantly negative.
- Deep-dive when you see relative impacts above 5%, metrics moving against their desired direction, conflicting movements across related metrics, or guardrail violations. Use the metric definition and source SQL tools to explain WHY a metric moved before speculating.
- For multi-arm experiments, compare arms against each other and name the winning arm.
- For web experiments, prefer webx metrics over app-wide counterparts when both appear.

Write for operators: short, concrete, and actionable. State the experiment, the movement (metric, relative impact, significance), what you found when you dug in, and a recommendation (ship, hold, investigate, or rollback).`
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"log_level":            DefaultLogLevel,
		"agent.max_iterations": DefaultAgentMaxIterations,
		"agent.max_tool_calls": DefaultAgentMaxToolCalls,
		"models.default":       DefaultModel,
		"models.fast":          DefaultFastModel,
		"models.base_url":      DefaultOpenAIBaseURL,
		"models.registry": []ModelRegistry{
			{Name: DefaultModel, Provider: "openai"},
			{Name: DefaultFastModel, Provider: "openai"},
			{Name: "claude-sonnet-4-5", Provider: "anthropic"},
			{Name: "gemini-2.5-pro", Provider: "gemini"},
		},
		"prompts.system":               DefaultSystemPrompt,
		"warehouse.driver":             DefaultWarehouseDriver,
		"warehouse.dsn":                filepath.Join(os.Getenv("HOME"), ".callout", "warehouse.db"),
		"warehouse.query_timeout":      DefaultWarehouseQueryTimeout,
		"warehouse.live_view":          DefaultLiveView,
		"warehouse.source_url_base":    "",
		"warehouse.tables.experiments": DefaultExperimentsTable,
		"warehouse.tables.results":     DefaultResultsTable,
		"warehouse.tables.metrics":     DefaultMetricsTable,
		"warehouse.tables.sources":     DefaultSourcesTable,
		"warehouse.tables.callouts":    DefaultCalloutsTable,
		"report.enabled":               true,
		"report.dir":                   DefaultReportDir,
		"archive.enabled":              true,
		"slack.enabled":                false,
		"schedule.cron":                DefaultScheduleCron,
		"lock.path":                    filepath.Join(os.Getenv("HOME"), ".callout", "daily.lock"),
		"lock.retry":                   DefaultLockRetry,
		"lock.max_retry":               DefaultLockMaxRetry,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".callout", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("CALLOUT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CALLOUT_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	// Post-Process: Inject standard Env Vars if missing
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "openai" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "anthropic" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "gemini" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" && cfg.Slack.BotToken == "" {
		cfg.Slack.BotToken = token
	}

	return &cfg, nil
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	reportDir, err := pathutil.Expand(cfg.Report.Dir)
	if err != nil {
		return err
	}
	if reportDir != "" {
		cfg.Report.Dir = reportDir
	}

	lockPath, err := pathutil.Expand(cfg.Lock.Path)
	if err != nil {
		return err
	}
	if lockPath != "" {
		cfg.Lock.Path = lockPath
	}

	// The DSN is a filesystem path only for the embedded sqlite driver.
	if cfg.Warehouse.Driver == "sqlite" {
		dsn, err := pathutil.Expand(cfg.Warehouse.DSN)
		if err != nil {
			return err
		}
		if dsn != "" {
			cfg.Warehouse.DSN = dsn
		}
	}

	return nil
}
