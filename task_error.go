package coordinator

import (
	"errors"
	"fmt"
)

// TaskError wraps a task execution failure with the task and worker that produced it.
type TaskError struct {
	TaskID   int
	WorkerID int
	Err      error
}

func newTaskError(err error, taskID, workerID int) error {
	if err == nil {
		return nil
	}
	return &TaskError{TaskID: taskID, WorkerID: workerID, Err: err}
}

func (e *TaskError) Error() string { return e.Err.Error() }
func (e *TaskError) Unwrap() error { return e.Err }

func (e *TaskError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "task(id=%d,worker=%d): %+v", e.TaskID, e.WorkerID, e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskID returns the id of the task that produced err, if err wraps a TaskError.
func ExtractTaskID(err error) (int, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.TaskID, true
	}
	return 0, false
}

// ExtractWorkerID returns the id of the worker that ran the failed task.
func ExtractWorkerID(err error) (int, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.WorkerID, true
	}
	return 0, false
}
