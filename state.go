package boot

// TaskState describes the lifecycle of one task inside one process.
// A task descriptor may be registered in several processes at once; each
// process tracks its own state for it.
type TaskState string

const (
	// TaskUnknown means the process has no node for the task.
	TaskUnknown TaskState = "unknown"
	// TaskIdle means the task is registered but not yet evaluated.
	TaskIdle TaskState = "idle"
	// TaskRunning means the task's delegate has been invoked and has not
	// settled yet.
	TaskRunning TaskState = "running"
	// TaskCompleted means the delegate returned without an error.
	TaskCompleted TaskState = "completed"
	// TaskFailed means the delegate returned an error or panicked.
	TaskFailed TaskState = "failed"
	// TaskSkipped means the task never ran because a strong dependency
	// failed or was skipped.
	TaskSkipped TaskState = "skipped"
)

// IsTerminal reports whether the state is final for a run.
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskSkipped
}

// Status describes the lifecycle of a [Process].
type Status string

const (
	// StatusIdle is the initial status; tasks may be added.
	StatusIdle Status = "idle"
	// StatusRunning means a run is in progress.
	StatusRunning Status = "running"
	// StatusFinalizing means all nodes settled and the result is being
	// assembled.
	StatusFinalizing Status = "finalizing"
	// StatusCompleted means the run finished and produced a result.
	StatusCompleted Status = "completed"
	// StatusFail means the run was rejected by a fatal error.
	StatusFail Status = "fail"
	// StatusCancelled means cooperative cancellation ended the run.
	StatusCancelled Status = "cancelled"
	// StatusDisposed means internal state has been released.
	StatusDisposed Status = "disposed"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFail, StatusCancelled, StatusDisposed:
		return true
	}
	return false
}
