package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainExactStep(t *testing.T) {
	q := NewQueue[string]()
	q.Assign(5, "WE_0")
	q.Assign(7, "EW_0")

	for step := 0; step < 5; step++ {
		assert.Empty(t, q.Drain(step), "step %d", step)
	}
	assert.Equal(t, []string{"WE_0"}, q.Drain(5))
	assert.Empty(t, q.Drain(6))
	assert.Equal(t, []string{"EW_0"}, q.Drain(7))
	for step := 8; step < 20; step++ {
		assert.Empty(t, q.Drain(step))
	}
	assert.Zero(t, q.Pending())
}

func TestQueueKeepsAssignmentOrder(t *testing.T) {
	q := NewQueue[string]()
	q.Assign(3, "a")
	q.Assign(3, "b")
	q.Assign(3, "c")
	assert.Equal(t, []string{"a", "b", "c"}, q.Drain(3))
}

func TestQueueDrainIdempotent(t *testing.T) {
	q := NewQueue[int]()
	q.Assign(2, 1)
	require.Len(t, q.Drain(2), 1)
	assert.Empty(t, q.Drain(2))
	assert.Empty(t, q.Drain(2))
	assert.Zero(t, q.Pending())
}

func TestQueuePeekIsPureRead(t *testing.T) {
	q := NewQueue[int]()
	assert.Empty(t, q.Peek(9))
	assert.Empty(t, q.Steps(), "peek must not create slots")

	q.Assign(4, 10)
	got := q.Peek(4)
	got[0] = 99
	assert.Equal(t, []int{10}, q.Peek(4))
	assert.Equal(t, 1, q.Pending())
}

func TestQueueSteps(t *testing.T) {
	q := NewQueue[int]()
	q.Assign(30, 1)
	q.Assign(10, 2)
	q.Assign(20, 3)
	q.Assign(10, 4)
	assert.Equal(t, []int{10, 20, 30}, q.Steps())
	assert.Equal(t, 4, q.Pending())
	q.Drain(10)
	assert.Equal(t, []int{20, 30}, q.Steps())
	assert.Equal(t, 2, q.Pending())
}
