package scheduler

import (
	"fmt"
	"strings"
)

// Order selects the worklist discipline.
type Order string

const (
	// LIFO pops the most recently pushed node first (depth-first).
	LIFO Order = "lifo"
	// FIFO pops the oldest pushed node first (breadth-first).
	FIFO Order = "fifo"
)

// ParseOrder accepts "lifo", "fifo" and their aliases "stack", "queue",
// "depth-first" and "breadth-first", in any case. Empty means LIFO.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lifo", "stack", "depth-first":
		return LIFO, nil
	case "fifo", "queue", "breadth-first":
		return FIFO, nil
	default:
		return "", fmt.Errorf("unknown scheduling order '%s' (want lifo or fifo)", s)
	}
}

// NewWorklist returns an empty worklist for the given order.
func NewWorklist(o Order) Worklist {
	if o == FIFO {
		return NewQueue()
	}
	return NewStack()
}

// Stack is a LIFO worklist.
type Stack struct {
	items []string
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

func (s *Stack) Push(id string) { s.items = append(s.items, id) }

func (s *Stack) Pop() (string, bool) {
	if len(s.items) == 0 {
		return "", false
	}
	last := len(s.items) - 1
	id := s.items[last]
	s.items = s.items[:last]
	return id, true
}

func (s *Stack) Len() int { return len(s.items) }

// Queue is a FIFO worklist.
type Queue struct {
	items []string
	head  int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Push(id string) { q.items = append(q.items, id) }

func (q *Queue) Pop() (string, bool) {
	if q.head == len(q.items) {
		return "", false
	}
	id := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.items, q.head = q.items[:0], 0
	}
	return id, true
}

func (q *Queue) Len() int { return len(q.items) - q.head }
