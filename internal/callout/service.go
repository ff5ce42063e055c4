// Package callout runs the daily pipeline end to end: resolve the
// snapshot date, run the analyst agent, then fan the finished callout
// out to the report file, the warehouse archive, and the notifier.
package callout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fionafan/callout/internal/agent"
	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/egress"
	calloutErrors "github.com/fionafan/callout/internal/errors"
	"github.com/fionafan/callout/internal/warehouse"
)

// Runner is the investigation loop the service drives. Satisfied by
// agent.Agent.
type Runner interface {
	Run(ctx context.Context, systemPrompt, taskPrompt string) (*agent.Result, error)
}

type Service struct {
	runner    Runner
	warehouse *warehouse.Warehouse
	archive   *Archive
	notifier  egress.Notifier
	modelName string
	cfg       *config.Config
}

// NewService wires the pipeline. notifier may be nil when no egress
// channel is configured.
func NewService(runner Runner, w *warehouse.Warehouse, notifier egress.Notifier, modelName string, cfg *config.Config) (*Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if w == nil {
		return nil, fmt.Errorf("warehouse cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Service{
		runner:    runner,
		warehouse: w,
		archive:   NewArchive(w),
		notifier:  notifier,
		modelName: modelName,
		cfg:       cfg,
	}, nil
}

// DailyOptions carries the per-run decisions the command layer already
// resolved from config and flags.
type DailyOptions struct {
	// Date to analyze, YYYY-MM-DD. Empty means the latest snapshot
	// date in the warehouse.
	Date    string
	Save    bool
	Archive bool
	Post    bool
}

type DailyResult struct {
	Date       string
	RunID      string
	Callout    string
	State      agent.State
	Iterations int
	ToolCalls  int
	Duration   time.Duration
	ReportPath string
	Archived   bool
	Posted     bool
}

// RunDaily generates one daily callout. Report write failures abort;
// archive and notifier failures are logged and reported in the result
// so a flaky channel never costs the generated text.
func (s *Service) RunDaily(ctx context.Context, opts DailyOptions) (*DailyResult, error) {
	lock, err := acquireRunLock(ctx, s.cfg.Lock)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	date := strings.TrimSpace(opts.Date)
	if date == "" {
		date = s.warehouse.MostRecentDate(ctx)
		slog.Info("Using most recent date with data", "date", date)
	}

	slog.Info("Starting callout generation", "date", date, "model", s.modelName)
	start := time.Now()
	res, err := s.runner.Run(ctx, s.cfg.Prompts.System, DailyPrompt(date))
	if err != nil {
		return nil, fmt.Errorf("generate callout for %s: %w", date, err)
	}
	duration := time.Since(start)
	slog.Info("Callout generation completed",
		"date", date,
		"duration", duration.Round(time.Millisecond),
		"iterations", res.Iterations,
		"tool_calls", res.ToolCalls,
		"state", res.State,
	)

	out := &DailyResult{
		Date:       date,
		RunID:      res.RunID,
		Callout:    res.FinalText,
		State:      res.State,
		Iterations: res.Iterations,
		ToolCalls:  res.ToolCalls,
		Duration:   duration,
	}

	if opts.Save {
		path, err := WriteReport(s.cfg.Report.Dir, date, res.FinalText, time.Now())
		if err != nil {
			return out, err
		}
		out.ReportPath = path
		slog.Info("Callout saved", "path", path)
	}

	if opts.Archive {
		entry := Entry{
			Date:       date,
			Text:       res.FinalText,
			Model:      s.modelName,
			Seconds:    duration.Seconds(),
			ToolCalls:  res.ToolCalls,
			Iterations: res.Iterations,
		}
		if err := s.archive.Save(ctx, entry); err != nil {
			slog.Error("Failed to archive callout", "date", date, "error", err)
		} else {
			out.Archived = true
		}
	}

	if opts.Post && s.notifier != nil {
		text := fmt.Sprintf("Experiment Callout - %s\n\n%s", date, res.FinalText)
		if err := s.notifier.Send(ctx, text); err != nil {
			slog.Error("Failed to post callout", "notifier", s.notifier.Name(), "error", err)
		} else {
			out.Posted = true
			slog.Info("Callout posted", "notifier", s.notifier.Name())
		}
	}

	return out, nil
}

// Analyze runs a single-experiment deep dive. Nothing is saved or
// posted; the caller decides what to do with the text.
func (s *Service) Analyze(ctx context.Context, projectName, analysisID string) (*agent.Result, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, calloutErrors.InvalidInput("project name is required")
	}
	if strings.TrimSpace(analysisID) == "" {
		return nil, calloutErrors.InvalidInput("analysis id is required")
	}

	slog.Info("Starting experiment analysis", "project", projectName, "analysis_id", analysisID)
	return s.runner.Run(ctx, s.cfg.Prompts.System, AnalyzePrompt(projectName, analysisID))
}
