package models

import (
	"slices"
	"sync"
	"time"
)

// Columns holds the board split by status, each column newest first.
type Columns struct {
	Todo       []*Task `json:"todo"`
	InProgress []*Task `json:"inprogress"`
	Done       []*Task `json:"done"`
}

// Partition splits tasks into one column per status. Each column is ordered by
// descending creation time; tasks created at the same instant keep their input order.
func Partition(tasks []*Task) Columns {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b *Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	cols := Columns{
		Todo:       []*Task{},
		InProgress: []*Task{},
		Done:       []*Task{},
	}
	for _, t := range sorted {
		switch t.Status {
		case TaskStatusTodo:
			cols.Todo = append(cols.Todo, t)
		case TaskStatusInProgress:
			cols.InProgress = append(cols.InProgress, t)
		case TaskStatusDone:
			cols.Done = append(cols.Done, t)
		}
	}
	return cols
}

// Column returns the tasks for a single status.
func (c Columns) Column(status TaskStatus) []*Task {
	switch status {
	case TaskStatusTodo:
		return c.Todo
	case TaskStatusInProgress:
		return c.InProgress
	case TaskStatusDone:
		return c.Done
	}
	return nil
}

func (c Columns) Len() int {
	return len(c.Todo) + len(c.InProgress) + len(c.Done)
}

// CreationClock hands out strictly increasing creation times, so tasks inserted
// back to back (a generated batch, for instance) never tie.
type CreationClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewCreationClock() *CreationClock {
	return &CreationClock{now: time.Now}
}

func (c *CreationClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	if now == nil {
		now = time.Now
	}

	t := now().UTC().Round(0)
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
