package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fionafan/callout/internal/model/contract"
)

type countingBudget struct {
	calls int
}

func (c *countingBudget) RecordToolCall() { c.calls++ }

type stubQueryTool struct {
	name    string
	params  map[string]interface{}
	execute func(ctx context.Context, args json.RawMessage) (string, error)
	runs    int
}

func (t *stubQueryTool) Name() string        { return t.name }
func (t *stubQueryTool) Description() string { return "stub" }

func (t *stubQueryTool) Parameters() map[string]interface{} {
	if t.params != nil {
		return t.params
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sql": map[string]interface{}{
				"type": "string",
			},
		},
		"required": []string{"sql"},
	}
}

func (t *stubQueryTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	t.runs++
	if t.execute != nil {
		return t.execute(ctx, args)
	}
	return "ok", nil
}

func TestRegistryRegister_NormalizesName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubQueryTool{name: "  query_warehouse  "})

	_, ok := registry.Get("query_warehouse")
	require.True(t, ok)

	_, ok = registry.Get(" query_warehouse ")
	require.True(t, ok)

	_, ok = registry.Get("query_snowflake")
	require.False(t, ok)
}

func TestRegistryGetDescriptors_SortedByName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubQueryTool{name: "query_warehouse"})
	registry.Register(&stubQueryTool{name: "get_live_experiments"})
	registry.Register(&stubQueryTool{name: "parse_metric_spec"})

	defs := registry.GetDescriptors()
	require.Len(t, defs, 3)
	assert.Equal(t, "get_live_experiments", defs[0].Name)
	assert.Equal(t, "parse_metric_spec", defs[1].Name)
	assert.Equal(t, "query_warehouse", defs[2].Name)
	assert.NotNil(t, defs[0].Parameters)
}

func TestRouterInvoke_ReturnsObservation(t *testing.T) {
	var gotArgs json.RawMessage
	stub := &stubQueryTool{
		name: "query_warehouse",
		execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			gotArgs = args
			return "| day | orders |\n| --- | --- |\n| 2026-08-24 | 118 |", nil
		},
	}

	registry := NewRegistry()
	registry.Register(stub)
	budget := &countingBudget{}
	router := NewRouter(registry, budget)

	obs := router.Invoke(context.Background(), contract.ToolCall{
		ID:    "call_1",
		Name:  "query_warehouse",
		Input: `{"sql": "SELECT 1"}`,
	})

	assert.Contains(t, obs, "orders")
	assert.Equal(t, 1, budget.calls)
	assert.Equal(t, 1, stub.runs)
	assert.JSONEq(t, `{"sql": "SELECT 1"}`, string(gotArgs))
}

func TestRouterInvoke_UnknownTool(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubQueryTool{name: "query_warehouse"})
	budget := &countingBudget{}
	router := NewRouter(registry, budget)

	obs := router.Invoke(context.Background(), contract.ToolCall{
		ID:    "call_1",
		Name:  "list_tables",
		Input: `{}`,
	})

	assert.Equal(t, "Error: Unknown tool 'list_tables'", obs)
	assert.Equal(t, 1, budget.calls, "failed dispatch still spends budget")
}

func TestRouterInvoke_RepairsTruncatedArguments(t *testing.T) {
	stub := &stubQueryTool{name: "query_warehouse"}
	registry := NewRegistry()
	registry.Register(stub)
	router := NewRouter(registry, &countingBudget{})

	obs := router.Invoke(context.Background(), contract.ToolCall{
		ID:    "call_1",
		Name:  "query_warehouse",
		Input: `{"sql": "SELECT 1"`,
	})

	assert.Equal(t, "ok", obs)
	assert.Equal(t, 1, stub.runs)
}

func TestRouterInvoke_InvalidArgumentsBecomeObservation(t *testing.T) {
	stub := &stubQueryTool{name: "query_warehouse"}
	registry := NewRegistry()
	registry.Register(stub)
	budget := &countingBudget{}
	router := NewRouter(registry, budget)

	tests := []struct {
		name  string
		input string
	}{
		{name: "unparseable payload", input: `]]]`},
		{name: "missing required field", input: `{}`},
		{name: "wrong field type", input: `{"sql": 123}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := router.Invoke(context.Background(), contract.ToolCall{
				ID:    "call_1",
				Name:  "query_warehouse",
				Input: tt.input,
			})
			assert.Contains(t, obs, "Error: Invalid arguments for query_warehouse")
		})
	}

	assert.Equal(t, len(tests), budget.calls)
	assert.Equal(t, 0, stub.runs, "rejected arguments never reach the tool")
}

func TestRouterInvoke_ExecutionFailureBecomesObservation(t *testing.T) {
	stub := &stubQueryTool{
		name: "query_warehouse",
		execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "", errors.New("warehouse timeout")
		},
	}
	registry := NewRegistry()
	registry.Register(stub)
	router := NewRouter(registry, &countingBudget{})

	obs := router.Invoke(context.Background(), contract.ToolCall{
		ID:    "call_1",
		Name:  "query_warehouse",
		Input: `{"sql": "SELECT 1"}`,
	})

	assert.Equal(t, "Error executing query_warehouse: warehouse timeout", obs)
}

func TestRouterInvoke_PanicIsContained(t *testing.T) {
	stub := &stubQueryTool{
		name: "query_warehouse",
		execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			panic("nil row cursor")
		},
	}
	registry := NewRegistry()
	registry.Register(stub)
	router := NewRouter(registry, &countingBudget{})

	var obs string
	require.NotPanics(t, func() {
		obs = router.Invoke(context.Background(), contract.ToolCall{
			ID:    "call_1",
			Name:  "query_warehouse",
			Input: `{"sql": "SELECT 1"}`,
		})
	})
	assert.Equal(t, "Error executing query_warehouse: panic: nil row cursor", obs)
}

func TestRouterInvoke_CountsBeforeExecution(t *testing.T) {
	budget := &countingBudget{}
	var callsAtExecution int
	stub := &stubQueryTool{
		name: "query_warehouse",
		execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			callsAtExecution = budget.calls
			return "ok", nil
		},
	}
	registry := NewRegistry()
	registry.Register(stub)
	router := NewRouter(registry, budget)

	router.Invoke(context.Background(), contract.ToolCall{
		ID:    "call_1",
		Name:  "query_warehouse",
		Input: `{"sql": "SELECT 1"}`,
	})

	assert.Equal(t, 1, callsAtExecution)
}

func TestRouterInvoke_EmptyArgumentsTreatedAsEmptyObject(t *testing.T) {
	var gotArgs json.RawMessage
	stub := &stubQueryTool{
		name: "get_live_experiments",
		params: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			gotArgs = args
			return "no live experiments", nil
		},
	}
	registry := NewRegistry()
	registry.Register(stub)
	router := NewRouter(registry, &countingBudget{})

	obs := router.Invoke(context.Background(), contract.ToolCall{
		ID:   "call_1",
		Name: "get_live_experiments",
	})

	assert.Equal(t, "no live experiments", obs)
	assert.JSONEq(t, `{}`, string(gotArgs))
}
