package agent

// Budget tracks the two ceilings that bound a run: completion
// iterations and total tool invocations. The counters only move up and
// the ceilings never change, so every run gets a fresh instance.
type Budget struct {
	maxIterations int
	maxToolCalls  int
	iterations    int
	toolCalls     int
}

func NewBudget(maxIterations, maxToolCalls int) *Budget {
	return &Budget{
		maxIterations: maxIterations,
		maxToolCalls:  maxToolCalls,
	}
}

func (b *Budget) RecordIteration() {
	b.iterations++
}

// RecordToolCall satisfies the tool router's counter dependency. The
// router calls it before each dispatch so failed calls spend budget too.
func (b *Budget) RecordToolCall() {
	b.toolCalls++
}

func (b *Budget) IterationOK() bool {
	return b.iterations < b.maxIterations
}

func (b *Budget) ToolCallOK() bool {
	return b.toolCalls < b.maxToolCalls
}

// Exhausted reports whether either ceiling has been reached.
func (b *Budget) Exhausted() bool {
	return !b.IterationOK() || !b.ToolCallOK()
}

func (b *Budget) Iterations() int {
	return b.iterations
}

func (b *Budget) ToolCalls() int {
	return b.toolCalls
}

func (b *Budget) MaxIterations() int {
	return b.maxIterations
}

func (b *Budget) MaxToolCalls() int {
	return b.maxToolCalls
}
