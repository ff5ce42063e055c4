package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/logger"
	"github.com/fionafan/callout/internal/model"
	"github.com/fionafan/callout/internal/tool"
)

// State identifies where a run is in its lifecycle.
type State string

const (
	StateRunning          State = "RUNNING"
	StateAwaitingTools    State = "AWAITING_TOOLS"
	StateTerminatedNormal State = "TERMINATED_NORMAL"
	StateTerminatedBudget State = "TERMINATED_BUDGET"
	StateTerminatedError  State = "TERMINATED_ERROR"
)

const (
	wrapUpPrompt      = "Please provide your final callout based on the information gathered so far."
	emptyResponseText = "No response generated"
)

// Result is the immutable outcome of one run.
type Result struct {
	RunID      string
	FinalText  string
	Iterations int
	ToolCalls  int
	State      State
}

// Agent drives the reason, act, observe cycle. It holds nothing mutable
// across runs: every Run builds its own budget, conversation and tool
// router, so concurrent runs never share state.
type Agent struct {
	client        model.Client
	registry      *tool.Registry
	modelName     string
	maxIterations int
	maxToolCalls  int
}

func New(client model.Client, registry *tool.Registry, modelName string, cfg config.AgentConfig) *Agent {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = config.DefaultAgentMaxIterations
	}
	maxToolCalls := cfg.MaxToolCalls
	if maxToolCalls <= 0 {
		maxToolCalls = config.DefaultAgentMaxToolCalls
	}

	return &Agent{
		client:        client,
		registry:      registry,
		modelName:     modelName,
		maxIterations: maxIterations,
		maxToolCalls:  maxToolCalls,
	}
}

// Run executes one bounded investigation. The returned Result is
// non-nil even when err is set; it carries the budget consumed before
// the failure and a terminal state of TERMINATED_ERROR.
func (a *Agent) Run(ctx context.Context, systemPrompt, taskPrompt string) (*Result, error) {
	runID := ulid.Make().String()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.ForRun(runID)

	budget := NewBudget(a.maxIterations, a.maxToolCalls)
	conv := NewConversation()
	router := tool.NewRouter(a.registry, budget)

	if err := conv.Seed(systemPrompt, taskPrompt); err != nil {
		return failedResult(runID, budget), err
	}

	log.Info("Run started",
		"model", a.modelName,
		"max_iterations", budget.MaxIterations(),
		"max_tool_calls", budget.MaxToolCalls(),
	)

	state := StateRunning
	for {
		// Both ceilings gate every new tool-enabled cycle. Crossing
		// either one downgrades to a single tool-free wrap-up request.
		if budget.Exhausted() {
			return a.wrapUp(ctx, log, conv, budget, runID)
		}
		budget.RecordIteration()

		log.Debug("ReAct iteration",
			"iteration", budget.Iterations(),
			"max", budget.MaxIterations(),
			"state", state,
		)

		req := model.BuildToolRequest(a.modelName, conv.Snapshot(), router.GetDescriptors())
		resp, err := a.client.Complete(ctx, req)
		if err != nil {
			log.Error("Completion failed", "error", err, "iteration", budget.Iterations())
			return failedResult(runID, budget), err
		}

		if err := conv.AppendAssistant(resp.Content, resp.ToolCalls); err != nil {
			return failedResult(runID, budget), err
		}

		if len(resp.ToolCalls) == 0 {
			log.Info("Run finished",
				"iterations", budget.Iterations(),
				"tool_calls", budget.ToolCalls(),
			)
			return &Result{
				RunID:      runID,
				FinalText:  textOrFallback(resp.Content),
				Iterations: budget.Iterations(),
				ToolCalls:  budget.ToolCalls(),
				State:      StateTerminatedNormal,
			}, nil
		}

		state = StateAwaitingTools
		log.Debug("Tool batch requested", "count", len(resp.ToolCalls), "state", state)

		// The whole batch is answered in emission order even when the
		// tool-call ceiling is crossed partway through. Only the next
		// cycle's gate reacts to the overshoot.
		for _, call := range resp.ToolCalls {
			observation := router.Invoke(ctx, *call)
			if err := conv.AppendToolResult(call.ID, observation); err != nil {
				return failedResult(runID, budget), err
			}
		}
		state = StateRunning
	}
}

// wrapUp issues the single tool-free completion that turns an exhausted
// run into a best-effort answer. Failure here does not fail the run; it
// degrades to a placeholder final text.
func (a *Agent) wrapUp(ctx context.Context, log *slog.Logger, conv *Conversation, budget *Budget, runID string) (*Result, error) {
	log.Warn("Budget exhausted, requesting wrap-up",
		"iterations", budget.Iterations(),
		"max_iterations", budget.MaxIterations(),
		"tool_calls", budget.ToolCalls(),
		"max_tool_calls", budget.MaxToolCalls(),
	)

	res := &Result{
		RunID:      runID,
		Iterations: budget.Iterations(),
		ToolCalls:  budget.ToolCalls(),
		State:      StateTerminatedBudget,
	}

	if err := conv.AppendUser(wrapUpPrompt); err != nil {
		res.State = StateTerminatedError
		return res, err
	}

	resp, err := a.client.Complete(ctx, model.BuildFinalRequest(a.modelName, conv.Snapshot()))
	if err != nil {
		log.Error("Wrap-up completion failed", "error", err)
		res.FinalText = fmt.Sprintf("Error getting final response: %v", err)
		return res, nil
	}

	res.FinalText = textOrFallback(resp.Content)
	log.Info("Run finished at budget ceiling",
		"iterations", budget.Iterations(),
		"tool_calls", budget.ToolCalls(),
	)
	return res, nil
}

func failedResult(runID string, budget *Budget) *Result {
	return &Result{
		RunID:      runID,
		Iterations: budget.Iterations(),
		ToolCalls:  budget.ToolCalls(),
		State:      StateTerminatedError,
	}
}

func textOrFallback(content string) string {
	if strings.TrimSpace(content) == "" {
		return emptyResponseText
	}
	return content
}
