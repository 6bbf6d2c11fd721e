package boot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/SpireX64/go-boot/internal/pubsub"
	"github.com/SpireX64/go-boot/logging"
)

var processSeq atomic.Int64

// Process owns a task graph and executes it. The zero value is not usable;
// construct with [NewProcess]. A Process runs at most once and is safe for
// concurrent use.
type Process struct {
	mu      sync.Mutex
	id      string
	status  Status
	logger  *logging.Logger
	bus     *pubsub.Bus
	parents []*Process

	nodes       map[*Task]*node
	order       []*Task // registration order
	launchOrder []*Task // start order of the most recent run
}

// NewProcess creates an idle process. Parents given via [WithParents] have
// their reachable tasks and observed terminal states copied in, so a child
// can extend a finished graph instead of re-declaring it.
func NewProcess(opts ...ProcessOption) *Process {
	var cfg processConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = fmt.Sprintf("proc-%d", processSeq.Add(1))
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	p := &Process{
		id:      cfg.id,
		status:  StatusIdle,
		logger:  cfg.logger.WithProcess(cfg.id),
		parents: cfg.parents,
		nodes:   make(map[*Task]*node),
	}
	p.bus = pubsub.NewBus(func(topic string, recovered any, stack []byte) {
		p.logger.Error("event handler panic", "topic", topic, "panic", recovered, "stack", string(stack))
	})

	p.mu.Lock()
	for _, parent := range cfg.parents {
		p.inheritFrom(parent)
	}
	p.mu.Unlock()
	return p
}

// ID returns the process identifier.
func (p *Process) ID() string { return p.id }

// Status returns the current lifecycle status.
func (p *Process) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Add registers tasks on an idle process. Nil entries and tasks already
// present are ignored. Adding is denied once the process has started.
func (p *Process) Add(tasks ...*Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusIdle {
		return fmt.Errorf("%w: process is %s", ErrAdditionDenied, p.status)
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		p.addNode(t)
	}
	return nil
}

// Has reports whether the task has been registered, reachable or not.
func (p *Process) Has(t *Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.nodes[t]
	return ok
}

// IsReachable reports whether the task is in the reachable set, meaning it
// was added directly or promoted as a dependency of a reachable task.
func (p *Process) IsReachable(t *Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[t]
	return ok && n.reachable
}

// TasksCount returns the number of known tasks, including unreachable ones.
func (p *Process) TasksCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.nodes)
}

// TaskState returns the observed state of the task, or [TaskUnknown] for a
// task that was never registered.
func (p *Process) TaskState(t *Task) TaskState {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[t]
	if !ok {
		return TaskUnknown
	}
	return n.state
}

// TaskFailure returns the error recorded for a failed task, or nil.
func (p *Process) TaskFailure(t *Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[t]
	if !ok {
		return nil
	}
	return n.failure
}

// On subscribes a handler to one event kind and returns a subscription ID
// for [Process.Off]. Handlers run synchronously on the scheduling
// goroutine, in subscription order.
func (p *Process) On(kind EventKind, handler Handler) string {
	return p.bus.Subscribe(string(kind), func(payload any) {
		if ev, ok := payload.(Event); ok {
			handler(ev)
		}
	})
}

// Off removes a subscription. It reports whether the ID was known, so
// removing twice is harmless.
func (p *Process) Off(id string) bool {
	return p.bus.Unsubscribe(id)
}

// IsChildOf reports whether parent appears in this process's ancestry.
func (p *Process) IsChildOf(parent *Process) bool {
	if parent == nil {
		return false
	}
	for _, pp := range p.parents {
		if pp == parent || pp.IsChildOf(parent) {
			return true
		}
	}
	return false
}

// Run executes the graph and blocks until it settles. It returns the
// outcome exactly once: a [Result] on full success, or an error for a
// validation failure, an important task failure, a mandatory skip, or
// cancellation. A nil ctx is treated as [context.Background]. ctx carries
// the cancellation token; its cause becomes the abort reason.
func (p *Process) Run(ctx context.Context, opts ...RunOption) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var cfg runConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p.mu.Lock()
	switch p.status {
	case StatusIdle:
	case StatusDisposed:
		p.mu.Unlock()
		return nil, &ProcessError{Kind: ErrProcessDisposed}
	default:
		st := p.status
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: process is %s", ErrAlreadyStarted, st)
	}
	p.status = StatusRunning
	p.launchOrder = nil

	if cfg.syncParents {
		if err := p.syncWithParents(cfg.resetFailed); err != nil {
			p.status = StatusFail
			p.mu.Unlock()
			p.logger.Error("parent synchronization failed", "error", err)
			return nil, err
		}
	} else {
		p.resetNodes()
	}

	if err := p.validateReachability(); err != nil {
		p.status = StatusFail
		p.mu.Unlock()
		p.logger.Error("validation failed", "error", err)
		return nil, err
	}

	rs := &runState{}
	for _, t := range p.order {
		n := p.nodes[t]
		if !n.reachable {
			continue
		}
		rs.total++
		if n.state.IsTerminal() {
			rs.terminal++
		}
	}
	rs.doneCh = make(chan settlement, rs.total)
	p.mu.Unlock()

	p.logger.Info("process started", "tasks", rs.total, "settled", rs.terminal)

	if err := p.schedule(ctx, rs); err != nil {
		p.mu.Lock()
		if errors.Is(err, ErrProcessAborted) {
			p.status = StatusCancelled
		} else {
			p.status = StatusFail
		}
		st := p.status
		p.mu.Unlock()
		p.logger.Error("process finished", "status", st, "error", err)
		return nil, err
	}

	p.mu.Lock()
	p.status = StatusFinalizing
	res := p.buildResult()
	p.mu.Unlock()

	p.bus.Publish(string(EventFinish), newFinishEvent(res))

	p.mu.Lock()
	p.status = StatusCompleted
	p.mu.Unlock()

	p.logger.Info("process completed",
		"succeeded", len(res.success),
		"failed", len(res.failure),
		"skipped", len(res.skipped),
		"unreachable", len(res.unreachable))

	if cfg.disposeOnFinish {
		if err := p.Dispose(); err != nil {
			p.logger.Warn("dispose after finish failed", "error", err)
		}
	}
	return res, nil
}

// validateReachability fails the run before any delegate starts when a
// non-optional task sits in the unreachable set. Every offender is named
// and marked failed. Must be called with p.mu held.
func (p *Process) validateReachability() error {
	var offenders []*node
	for _, t := range p.order {
		n := p.nodes[t]
		if !n.reachable && !n.task.optional {
			offenders = append(offenders, n)
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	names := make([]string, len(offenders))
	for i, n := range offenders {
		names[i] = n.task.name
	}
	err := &ProcessError{Kind: ErrUnreachableTasks, Tasks: names}
	for _, n := range offenders {
		n.state = TaskFailed
		n.failure = err
	}
	return err
}

// buildResult partitions the graph by outcome. Must be called with p.mu
// held.
func (p *Process) buildResult() *Result {
	res := &Result{}
	for _, t := range p.order {
		n := p.nodes[t]
		if !n.reachable {
			res.unreachable = append(res.unreachable, t)
			continue
		}
		switch n.state {
		case TaskCompleted:
			res.success = append(res.success, t)
		case TaskFailed:
			res.failure = append(res.failure, t)
		case TaskSkipped:
			res.skipped = append(res.skipped, t)
		}
	}
	return res
}

// Dispose releases the task collections and event subscriptions. Disposing
// an already disposed process is a no-op; disposing while the process is
// running or finalizing is an error.
func (p *Process) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.status {
	case StatusRunning, StatusFinalizing:
		return ErrDisposeWhileRunning
	case StatusDisposed:
		return nil
	}
	p.status = StatusDisposed
	p.nodes = nil
	p.order = nil
	p.launchOrder = nil
	p.bus.Clear()
	p.logger.Debug("process disposed")
	return nil
}
