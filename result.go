package boot

// Result is the immutable outcome of one process run, computed exactly once
// at finalization. Success, Failure, and Skipped partition the reachable
// set; Unreachable lists registered tasks whose dependencies were never
// satisfied. All accessors return copies in registration order.
type Result struct {
	success     []*Task
	failure     []*Task
	skipped     []*Task
	unreachable []*Task
}

// Success returns the tasks that completed.
func (r *Result) Success() []*Task { return copyTasks(r.success) }

// Failure returns the tasks whose delegates returned an error or panicked.
func (r *Result) Failure() []*Task { return copyTasks(r.failure) }

// Skipped returns the tasks resolved as Skipped without running.
func (r *Result) Skipped() []*Task { return copyTasks(r.skipped) }

// Unreachable returns the tasks that stayed outside the reachable set.
func (r *Result) Unreachable() []*Task { return copyTasks(r.unreachable) }

// IsSuccess reports whether every reachable task completed, with nothing
// failed or skipped.
func (r *Result) IsSuccess() bool {
	return len(r.failure) == 0 && len(r.skipped) == 0
}

func copyTasks(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	copy(out, tasks)
	return out
}
