// Package dispatch buffers scheduled vehicles until their release step.
package dispatch

import "sort"

// Queue maps a release step to the vehicles that enter the road at that step.
// Vehicles keep their assignment order within a step. Reads of a step that was
// never assigned return an empty slice and leave the queue untouched.
type Queue[T any] struct {
	slots   map[int][]T
	pending int
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{slots: make(map[int][]T)}
}

// Assign appends v to the list released at step.
func (q *Queue[T]) Assign(step int, v T) {
	q.slots[step] = append(q.slots[step], v)
	q.pending++
}

// Drain removes and returns the vehicles released at step. Draining a step
// twice returns an empty slice the second time.
func (q *Queue[T]) Drain(step int) []T {
	vs, ok := q.slots[step]
	if !ok {
		return nil
	}
	delete(q.slots, step)
	q.pending -= len(vs)
	return vs
}

// Peek returns a copy of the vehicles waiting for step.
func (q *Queue[T]) Peek(step int) []T {
	vs := q.slots[step]
	if len(vs) == 0 {
		return nil
	}
	out := make([]T, len(vs))
	copy(out, vs)
	return out
}

// Pending returns the number of queued vehicles across all steps.
func (q *Queue[T]) Pending() int { return q.pending }

// Steps returns the release steps that still hold vehicles, in ascending order.
func (q *Queue[T]) Steps() []int {
	steps := make([]int, 0, len(q.slots))
	for s := range q.slots {
		steps = append(steps, s)
	}
	sort.Ints(steps)
	return steps
}
