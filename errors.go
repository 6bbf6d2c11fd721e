package boot

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the engine. Match them with [errors.Is]; run
// failures wrap them in a [*ProcessError] carrying the offending task names
// and the underlying cause.
var (
	// ErrInvalidPriority is returned by NewTask when the priority is NaN or
	// infinite.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrStrongDependencyOnOptional is returned by NewTask when a
	// non-optional task declares a strong dependency on an optional one.
	ErrStrongDependencyOnOptional = errors.New("strong dependency on optional task")

	// ErrAdditionDenied is returned by Add once the process has left the
	// Idle status.
	ErrAdditionDenied = errors.New("task addition denied")

	// ErrAlreadyStarted is returned by Run when the process has already
	// been run or is running.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrProcessDisposed is returned by Run on a disposed process.
	ErrProcessDisposed = errors.New("process is disposed")

	// ErrImportantTaskFailed rejects a run whose non-optional task failed.
	ErrImportantTaskFailed = errors.New("important task failed")

	// ErrMandatoryTaskSkipped rejects a run in which a non-optional task
	// would have been skipped by failure propagation.
	ErrMandatoryTaskSkipped = errors.New("mandatory task skipped")

	// ErrUnreachableTasks rejects a run while non-optional tasks are
	// missing dependency registrations.
	ErrUnreachableTasks = errors.New("important tasks unreachable")

	// ErrNoRootTasks rejects a run in which no registered task can start.
	ErrNoRootTasks = errors.New("no root tasks to start")

	// ErrDependencyCycle rejects a run whose remaining tasks wait on each
	// other and can never settle.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrParentDisposed rejects a synchronized run when a parent process
	// has been disposed.
	ErrParentDisposed = errors.New("parent process is disposed")

	// ErrProcessAborted rejects a run after cooperative cancellation was
	// observed. It wraps the cancellation cause.
	ErrProcessAborted = errors.New("process aborted")

	// ErrDisposeWhileRunning is returned by Dispose during Running or
	// Finalizing.
	ErrDisposeWhileRunning = errors.New("cannot dispose a running process")
)

// ProcessError is the structured fatal error produced by [Process.Run]. It
// carries the classification sentinel, the offending task name(s) when
// known, and the underlying cause when one exists. errors.Is matches both
// the sentinel and the cause.
type ProcessError struct {
	Kind  error
	Tasks []string
	Cause error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if len(e.Tasks) > 0 {
		b.WriteString(": ")
		for i, name := range e.Tasks {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", name)
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the classification sentinel and the cause to errors.Is/As.
func (e *ProcessError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

var _ error = (*ProcessError)(nil)
