package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/model/contract"
	"github.com/fionafan/callout/internal/tool"
)

type scriptStep struct {
	resp *contract.CompletionResponse
	err  error
}

// scriptedClient replays a fixed sequence of completion responses and
// records every request it received.
type scriptedClient struct {
	steps    []scriptStep
	loopLast bool
	requests []contract.CompletionRequest
}

func (c *scriptedClient) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	c.requests = append(c.requests, req)

	idx := len(c.requests) - 1
	if idx >= len(c.steps) {
		if !c.loopLast || len(c.steps) == 0 {
			return nil, errors.New("scripted client: unexpected completion request")
		}
		idx = len(c.steps) - 1
	}

	step := c.steps[idx]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

type scriptedTool struct {
	name string
	fn   func(ctx context.Context, args json.RawMessage) (string, error)
}

func (t *scriptedTool) Name() string        { return t.name }
func (t *scriptedTool) Description() string { return "scripted" }

func (t *scriptedTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *scriptedTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if t.fn != nil {
		return t.fn(ctx, args)
	}
	return t.name + " ok", nil
}

func newTestAgent(client *scriptedClient, maxIterations, maxToolCalls int, tools ...tool.Tool) *Agent {
	registry := tool.NewRegistry()
	for _, t := range tools {
		registry.Register(t)
	}
	return New(client, registry, "gpt-4o", config.AgentConfig{
		MaxIterations: maxIterations,
		MaxToolCalls:  maxToolCalls,
	})
}

func toolCallsOf(names ...string) []*contract.ToolCall {
	calls := make([]*contract.ToolCall, 0, len(names))
	for i, name := range names {
		calls = append(calls, &contract.ToolCall{
			ID:    "call_" + string(rune('a'+i)),
			Name:  name,
			Input: `{}`,
		})
	}
	return calls
}

func TestRunFinishesWithoutTools(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{Content: "All quiet today."}},
	}}
	a := newTestAgent(client, 20, 30, &scriptedTool{name: "get_live_experiments"})

	res, err := a.Run(context.Background(), "system prompt", "task prompt")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedNormal, res.State)
	assert.Equal(t, "All quiet today.", res.FinalText)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.ToolCalls)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, contract.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "system prompt", req.Messages[0].Content)
	assert.Equal(t, contract.RoleUser, req.Messages[1].Role)
	assert.Equal(t, "task prompt", req.Messages[1].Content)
	assert.NotEmpty(t, req.Tools)
	assert.Equal(t, "auto", req.ToolChoice)
}

func TestRunExecutesToolBatchInOrder(t *testing.T) {
	var executed []string
	run := func(name string) func(context.Context, json.RawMessage) (string, error) {
		return func(ctx context.Context, args json.RawMessage) (string, error) {
			executed = append(executed, name)
			return name + " ok", nil
		}
	}

	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_a", "tool_b")}},
		{resp: &contract.CompletionResponse{Content: "Done."}},
	}}
	a := newTestAgent(client, 20, 30,
		&scriptedTool{name: "tool_a", fn: run("tool_a")},
		&scriptedTool{name: "tool_b", fn: run("tool_b")},
	)

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedNormal, res.State)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 2, res.ToolCalls)
	assert.Equal(t, []string{"tool_a", "tool_b"}, executed)

	// Second request must replay the assistant turn followed by one
	// result per call, in emission order.
	require.Len(t, client.requests, 2)
	msgs := client.requests[1].Messages
	require.Len(t, msgs, 5)
	assert.Equal(t, contract.RoleAssistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 2)
	assert.Equal(t, contract.RoleTool, msgs[3].Role)
	assert.Equal(t, "call_a", msgs[3].ToolCallID)
	assert.Equal(t, "tool_a ok", msgs[3].Content)
	assert.Equal(t, contract.RoleTool, msgs[4].Role)
	assert.Equal(t, "call_b", msgs[4].ToolCallID)
	assert.Equal(t, "tool_b ok", msgs[4].Content)
}

func TestRunFinishesBatchThenStopsAtToolCeiling(t *testing.T) {
	var executed []string
	record := func(name string) func(context.Context, json.RawMessage) (string, error) {
		return func(ctx context.Context, args json.RawMessage) (string, error) {
			executed = append(executed, name)
			return name + " ok", nil
		}
	}

	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_a", "tool_b")}},
		{resp: &contract.CompletionResponse{Content: "Partial findings."}},
	}}
	a := newTestAgent(client, 20, 1,
		&scriptedTool{name: "tool_a", fn: record("tool_a")},
		&scriptedTool{name: "tool_b", fn: record("tool_b")},
	)

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedBudget, res.State)
	assert.Equal(t, "Partial findings.", res.FinalText)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 2, res.ToolCalls, "the batch in flight is always answered in full")
	assert.Equal(t, []string{"tool_a", "tool_b"}, executed)

	// No second batch: the only follow-up request is the tool-free
	// wrap-up carrying the appended user instruction.
	require.Len(t, client.requests, 2)
	wrapReq := client.requests[1]
	assert.Empty(t, wrapReq.Tools)
	assert.Empty(t, wrapReq.ToolChoice)
	assert.Equal(t, 4096, wrapReq.MaxTokens)
	require.NotNil(t, wrapReq.Temperature)

	last := wrapReq.Messages[len(wrapReq.Messages)-1]
	assert.Equal(t, contract.RoleUser, last.Role)
	assert.Equal(t, wrapUpPrompt, last.Content)
}

func TestRunForcesWrapUpAtIterationCeiling(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_a")}},
		{resp: &contract.CompletionResponse{Content: "Best effort summary."}},
	}}
	a := newTestAgent(client, 1, 30, &scriptedTool{name: "tool_a"})

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedBudget, res.State)
	assert.Equal(t, "Best effort summary.", res.FinalText)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, res.ToolCalls)

	require.Len(t, client.requests, 2)
	assert.Empty(t, client.requests[1].Tools)
}

func TestRunToolFailureDoesNotAbort(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_x", "tool_y")}},
		{resp: &contract.CompletionResponse{Content: "Recovered."}},
	}}
	a := newTestAgent(client, 20, 30,
		&scriptedTool{name: "tool_x", fn: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "", errors.New("cursor exploded")
		}},
		&scriptedTool{name: "tool_y"},
	)

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedNormal, res.State)
	assert.Equal(t, 2, res.ToolCalls, "the failing call still consumed budget")

	msgs := client.requests[1].Messages
	require.Len(t, msgs, 5)
	assert.Equal(t, "Error executing tool_x: cursor exploded", msgs[3].Content)
	assert.Equal(t, "tool_y ok", msgs[4].Content)
}

func TestRunCompletionFailureIsFatal(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{err: errors.New("bad gateway")},
	}}
	a := newTestAgent(client, 20, 30, &scriptedTool{name: "tool_a"})

	res, err := a.Run(context.Background(), "sys", "task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad gateway")

	require.NotNil(t, res, "callers always get a structured result")
	assert.Equal(t, StateTerminatedError, res.State)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.ToolCalls)
	assert.Empty(t, res.FinalText)
	require.Len(t, client.requests, 1, "no retry after a fatal completion failure")
}

func TestRunWrapUpFailureDegradesToPlaceholder(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_a")}},
		{err: errors.New("gateway drained")},
	}}
	a := newTestAgent(client, 1, 30, &scriptedTool{name: "tool_a"})

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err, "a failed wrap-up is a degrade path, not a fatal error")

	assert.Equal(t, StateTerminatedBudget, res.State)
	assert.Equal(t, "Error getting final response: gateway drained", res.FinalText)
}

func TestRunEmptyFinalContentFallsBack(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{Content: "   "}},
	}}
	a := newTestAgent(client, 20, 30)

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)
	assert.Equal(t, "No response generated", res.FinalText)
}

func TestRunTerminatesAgainstGreedyModel(t *testing.T) {
	client := &scriptedClient{
		steps: []scriptStep{
			{resp: &contract.CompletionResponse{ToolCalls: toolCallsOf("tool_a")}},
		},
		loopLast: true,
	}
	a := newTestAgent(client, 3, 100, &scriptedTool{name: "tool_a"})

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedBudget, res.State)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 3, res.ToolCalls)

	// Three tool-enabled cycles plus one wrap-up, nothing more.
	require.Len(t, client.requests, 4)
	for _, req := range client.requests[:3] {
		assert.NotEmpty(t, req.Tools)
	}
	assert.Empty(t, client.requests[3].Tools)
}

func TestRunUnknownToolBecomesObservation(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{
		{resp: &contract.CompletionResponse{ToolCalls: []*contract.ToolCall{
			{ID: "call_a", Name: "list_tables", Input: `{}`},
		}}},
		{resp: &contract.CompletionResponse{Content: "Adjusted."}},
	}}
	a := newTestAgent(client, 20, 30, &scriptedTool{name: "query_warehouse"})

	res, err := a.Run(context.Background(), "sys", "task")
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedNormal, res.State)
	assert.Equal(t, 1, res.ToolCalls)
	msgs := client.requests[1].Messages
	assert.Equal(t, "Error: Unknown tool 'list_tables'", msgs[len(msgs)-1].Content)
}
