package coordinator

import "fmt"

// Task is an immutable unit of work: an identifier and a non-negative cost.
//
// What cost means is up to the Executor; the default executor treats it as a
// number of time units to sleep. Task is a small value type and is passed by copy,
// so once submitted it can't be changed by anyone.
type Task struct {
	id   int
	cost uint
}

// NewTask returns a task with a caller-assigned id.
func NewTask(id int, cost uint) Task { return Task{id: id, cost: cost} }

// NewTasks returns one task per cost with sequential ids starting at 0.
func NewTasks(costs ...uint) []Task {
	tasks := make([]Task, len(costs))
	for i, c := range costs {
		tasks[i] = Task{id: i, cost: c}
	}
	return tasks
}

// ID returns the task identifier.
func (t Task) ID() int { return t.id }

// Cost returns the task cost in work units.
func (t Task) Cost() uint { return t.cost }

func (t Task) String() string { return fmt.Sprintf("task(id=%d,cost=%d)", t.id, t.cost) }

// withID returns a copy of t carrying id.
func (t Task) withID(id int) Task {
	t.id = id
	return t
}
