package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetCeilings(t *testing.T) {
	b := NewBudget(2, 3)

	assert.True(t, b.IterationOK())
	assert.True(t, b.ToolCallOK())
	assert.False(t, b.Exhausted())

	b.RecordIteration()
	assert.True(t, b.IterationOK())
	b.RecordIteration()
	assert.False(t, b.IterationOK())
	assert.True(t, b.Exhausted(), "either ceiling alone exhausts the budget")
	assert.True(t, b.ToolCallOK())

	assert.Equal(t, 2, b.Iterations())
	assert.Equal(t, 0, b.ToolCalls())
}

func TestBudgetToolCallCeilingIndependent(t *testing.T) {
	b := NewBudget(10, 2)

	b.RecordToolCall()
	assert.True(t, b.ToolCallOK())
	b.RecordToolCall()
	assert.False(t, b.ToolCallOK())
	assert.True(t, b.IterationOK())
	assert.True(t, b.Exhausted())

	// Counters keep moving past the ceiling; they never reset.
	b.RecordToolCall()
	assert.Equal(t, 3, b.ToolCalls())
	assert.False(t, b.ToolCallOK())
}

func TestBudgetMonotonic(t *testing.T) {
	b := NewBudget(5, 5)

	prevIter, prevCalls := b.Iterations(), b.ToolCalls()
	for i := 0; i < 4; i++ {
		b.RecordIteration()
		b.RecordToolCall()
		assert.Greater(t, b.Iterations(), prevIter)
		assert.Greater(t, b.ToolCalls(), prevCalls)
		prevIter, prevCalls = b.Iterations(), b.ToolCalls()
	}
}
