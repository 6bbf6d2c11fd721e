package boot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strings"
)

// Delegate is the unit of work a task performs. It receives the context
// passed to [Process.Run]; long-running work should honor its cancellation.
// Returning nil marks the task Completed, any error marks it Failed.
type Delegate func(ctx context.Context) error

// Dependency ties a task to one of its prerequisites. A strong dependency
// (Weak false) propagates failure: if the prerequisite fails or is skipped,
// the dependent is skipped without running. A weak dependency only delays
// the dependent until the prerequisite reaches a terminal state.
type Dependency struct {
	Task *Task
	Weak bool
}

// Task is an immutable descriptor of one unit of work: a delegate plus the
// name, priority, optionality, and dependencies that govern its scheduling.
// Construct tasks with [NewTask]; a descriptor may be registered in any
// number of processes.
type Task struct {
	name     string
	delegate Delegate
	priority float64
	optional bool
	deps     []Dependency
}

// TaskOption configures a task during construction.
type TaskOption func(*taskConfig)

type taskConfig struct {
	name     string
	nameSet  bool
	priority float64
	optional bool
	deps     []Dependency
}

// WithName overrides the default delegate-derived task name.
func WithName(name string) TaskOption {
	return func(c *taskConfig) {
		c.name = name
		c.nameSet = true
	}
}

// WithPriority sets the scheduling priority. Among simultaneously ready
// tasks, higher priorities start first. The default is 0.
func WithPriority(priority float64) TaskOption {
	return func(c *taskConfig) {
		c.priority = priority
	}
}

// Optional marks the task as optional: its failure or skip is recorded in
// the run result instead of failing the whole process.
func Optional() TaskOption {
	return func(c *taskConfig) {
		c.optional = true
	}
}

// DependsOn declares strong dependencies on the given tasks, in order.
func DependsOn(tasks ...*Task) TaskOption {
	return func(c *taskConfig) {
		for _, t := range tasks {
			c.deps = append(c.deps, Dependency{Task: t})
		}
	}
}

// WeakDependsOn declares weak dependencies on the given tasks, in order.
func WeakDependsOn(tasks ...*Task) TaskOption {
	return func(c *taskConfig) {
		for _, t := range tasks {
			c.deps = append(c.deps, Dependency{Task: t, Weak: true})
		}
	}
}

// WithDependencies appends explicit dependency references, allowing strong
// and weak dependencies to be mixed in a single declaration.
func WithDependencies(deps ...Dependency) TaskOption {
	return func(c *taskConfig) {
		c.deps = append(c.deps, deps...)
	}
}

// NewTask builds an immutable task descriptor around delegate.
//
// The name defaults to the delegate's own function name; anonymous
// functions yield an empty name unless [WithName] is given. NewTask fails
// with [ErrInvalidPriority] if the priority is not finite, and with
// [ErrStrongDependencyOnOptional] if a non-optional task declares a strong
// dependency on an optional one.
func NewTask(delegate Delegate, opts ...TaskOption) (*Task, error) {
	if delegate == nil {
		return nil, errors.New("boot: task delegate is required")
	}

	var cfg taskConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	name := cfg.name
	if !cfg.nameSet {
		name = delegateName(delegate)
	}

	if math.IsNaN(cfg.priority) || math.IsInf(cfg.priority, 0) {
		return nil, fmt.Errorf("%w: task %q: priority must be finite, got %v",
			ErrInvalidPriority, name, cfg.priority)
	}

	deps := make([]Dependency, 0, len(cfg.deps))
	for _, dep := range cfg.deps {
		if dep.Task == nil {
			continue
		}
		if !dep.Weak && !cfg.optional && dep.Task.optional {
			return nil, fmt.Errorf("%w: task %q strongly depends on optional task %q",
				ErrStrongDependencyOnOptional, name, dep.Task.name)
		}
		deps = append(deps, dep)
	}

	return &Task{
		name:     name,
		delegate: delegate,
		priority: cfg.priority,
		optional: cfg.optional,
		deps:     deps,
	}, nil
}

// Name returns the task name. It is empty for anonymous delegates without
// an explicit WithName.
func (t *Task) Name() string { return t.name }

// Priority returns the scheduling priority.
func (t *Task) Priority() float64 { return t.priority }

// IsOptional reports whether the task's failure is non-fatal to a run.
func (t *Task) IsOptional() bool { return t.optional }

// Dependencies returns a copy of the declared dependencies, in declaration
// order.
func (t *Task) Dependencies() []Dependency {
	out := make([]Dependency, len(t.deps))
	copy(out, t.deps)
	return out
}

// delegateName resolves a delegate's function name through the runtime, the
// way a named function carries its own identity. Anonymous functions and
// closures yield "".
func delegateName(d Delegate) string {
	fn := runtime.FuncForPC(reflect.ValueOf(d).Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if isClosureName(name) {
		return ""
	}
	return name
}

// isClosureName reports whether name is a compiler-generated closure label:
// "funcN", or the bare counter a nested closure ends with.
func isClosureName(name string) bool {
	rest, ok := strings.CutPrefix(name, "func")
	if !ok {
		rest = name
	}
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
