package tool

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/fionafan/callout/internal/model/contract"
)

// Tool represents one investigation capability. Arguments arrive as the
// raw JSON the model produced; the observation goes back as plain text
// for the next completion turn.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the closed tool catalog. It is assembled once at
// startup and never mutated afterwards, so runs can share it.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	name := NormalizeToolName(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}

	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	name = NormalizeToolName(name)
	t, ok := r.tools[name]
	return t, ok
}

// GetDescriptors returns the wire definitions for every registered
// tool, sorted by name so request payloads are deterministic.
func (r *Registry) GetDescriptors() []contract.ToolDef {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
