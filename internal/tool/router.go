package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fionafan/callout/internal/logger"
	"github.com/fionafan/callout/internal/model/contract"
	"github.com/kaptinlin/jsonrepair"
)

// CallCounter records that a tool invocation started. The loop's budget
// satisfies it; the router never reads budget state itself.
type CallCounter interface {
	RecordToolCall()
}

// Router turns requested tool calls into observation strings. Every
// failure mode collapses into a readable observation so one bad call
// never aborts the surrounding run.
type Router struct {
	registry *Registry
	counter  CallCounter
}

func NewRouter(registry *Registry, counter CallCounter) *Router {
	return &Router{
		registry: registry,
		counter:  counter,
	}
}

func (r *Router) GetDescriptors() []contract.ToolDef {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry.GetDescriptors()
}

// Invoke dispatches one tool call and always returns an observation.
// The call is counted before anything else happens, so a failed
// invocation spends budget the same as a successful one.
func (r *Router) Invoke(ctx context.Context, call contract.ToolCall) string {
	if r.counter != nil {
		r.counter.RecordToolCall()
	}

	runID := logger.GetRunID(ctx)
	name := NormalizeToolName(call.Name)

	t, ok := r.registry.Get(name)
	if !ok {
		slog.Warn("Unknown tool requested", "tool", name, "call_id", call.ID, "run_id", runID)
		return fmt.Sprintf("Error: Unknown tool '%s'", name)
	}

	args, err := decodeArgs(call.Input)
	if err != nil {
		slog.Warn("Tool arguments unreadable", "tool", name, "call_id", call.ID, "error", err, "run_id", runID)
		return fmt.Sprintf("Error: Invalid arguments for %s", name)
	}

	if err := ValidateInput(t.Parameters(), args); err != nil {
		slog.Warn("Tool input validation failed", "tool", name, "call_id", call.ID, "error", err, "run_id", runID)
		return fmt.Sprintf("Error: Invalid arguments for %s: %v", name, err)
	}

	start := time.Now()
	slog.Info("Executing tool", "tool", name, "call_id", call.ID, "run_id", runID)

	observation, err := executeGuarded(ctx, t, args)

	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", name, "error", err, "duration", duration, "run_id", runID)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}

	slog.Info("Tool execution success", "tool", name, "duration", duration, "run_id", runID)
	return observation
}

// executeGuarded shields the run from panicking handlers.
func executeGuarded(ctx context.Context, t Tool, args json.RawMessage) (observation string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return t.Execute(ctx, args)
}

// decodeArgs accepts the raw argument payload the model produced,
// running a JSON repair pass when it does not parse as written. Models
// occasionally emit truncated or single-quoted JSON that repair can
// still recover.
func decodeArgs(input string) (json.RawMessage, error) {
	if strings.TrimSpace(input) == "" {
		return json.RawMessage("{}"), nil
	}

	raw := json.RawMessage(input)
	if json.Valid(raw) {
		return raw, nil
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if !json.Valid(json.RawMessage(repaired)) {
		return nil, fmt.Errorf("arguments remain invalid after repair")
	}
	return json.RawMessage(repaired), nil
}
