package boot

import "github.com/SpireX64/go-boot/logging"

// ProcessOption configures a [Process] at construction.
type ProcessOption func(*processConfig)

type processConfig struct {
	id      string
	parents []*Process
	logger  *logging.Logger
}

// WithParents declares the parent processes whose reachable graphs are
// copied into the new process. Nil entries are ignored.
func WithParents(parents ...*Process) ProcessOption {
	return func(c *processConfig) {
		for _, parent := range parents {
			if parent != nil {
				c.parents = append(c.parents, parent)
			}
		}
	}
}

// WithLogger attaches a structured logger to the process. The default is
// [logging.NopLogger].
func WithLogger(logger *logging.Logger) ProcessOption {
	return func(c *processConfig) {
		c.logger = logger
	}
}

// WithID overrides the generated process identifier used in log entries.
func WithID(id string) ProcessOption {
	return func(c *processConfig) {
		c.id = id
	}
}

// RunOption configures a single [Process.Run] invocation.
type RunOption func(*runConfig)

type runConfig struct {
	syncParents     bool
	resetFailed     bool
	disposeOnFinish bool
}

// SynchronizeWithParents re-copies each parent's current task states
// immediately before scheduling, so work a parent has already completed is
// treated as terminal and not repeated. The run fails with
// [ErrParentDisposed] if a parent has been disposed.
func SynchronizeWithParents() RunOption {
	return func(c *runConfig) {
		c.syncParents = true
	}
}

// ResetFailedTasks clears inherited Failed and Skipped states during parent
// synchronization, returning those nodes to Idle so the child re-evaluates
// and potentially re-runs them. It has no effect without
// [SynchronizeWithParents].
func ResetFailedTasks() RunOption {
	return func(c *runConfig) {
		c.resetFailed = true
	}
}

// DisposeOnFinish disposes the process automatically after a successful
// run.
func DisposeOnFinish() RunOption {
	return func(c *runConfig) {
		c.disposeOnFinish = true
	}
}
