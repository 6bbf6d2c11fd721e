package boot

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/panics"
)

// settlement is one delegate outcome reported back to the scheduling loop.
type settlement struct {
	node *node
	err  error
}

// runState is the bookkeeping for a single run, owned by the scheduling
// goroutine.
type runState struct {
	doneCh   chan settlement
	inFlight int
	total    int // reachable nodes in this run
	terminal int // reachable nodes in a terminal state
	fatal    *ProcessError
	abort    error // cancellation cause once observed
}

// schedule drives the run to the point where no node is running and no
// further node may start. It returns nil when the whole reachable set
// settled, or the fatal/cancellation error that ended the run early.
//
// The loop launches every ready node, then blocks for a single settlement
// and re-evaluates that node's dependents, so a fast dependency unblocks
// its dependents before slower siblings of the same wave finish. After a
// fatal error or observed cancellation nothing new starts; in-flight
// delegates are drained and their outcomes recorded.
func (p *Process) schedule(ctx context.Context, rs *runState) error {
	p.mu.Lock()
	ready := p.evaluate(rs, p.idleReachable())
	p.mu.Unlock()

	if rs.fatal == nil && rs.total > 0 && rs.terminal == 0 && len(ready) == 0 {
		rs.fatal = &ProcessError{Kind: ErrNoRootTasks}
	}

	for {
		p.observeCancellation(ctx, rs)
		if rs.fatal == nil && rs.abort == nil && len(ready) > 0 {
			p.launchReady(ctx, rs, ready)
		}
		ready = nil

		if rs.inFlight == 0 {
			break
		}
		s := <-rs.doneCh
		rs.inFlight--
		// Cancellation takes effect the moment it is observed: a settlement
		// arriving afterwards is recorded but decides nothing.
		p.observeCancellation(ctx, rs)
		ready = p.applySettlement(rs, s)
	}

	if rs.abort != nil {
		return &ProcessError{Kind: ErrProcessAborted, Cause: rs.abort}
	}
	if rs.fatal != nil {
		return rs.fatal
	}

	// End-of-graph sweep: continuous re-evaluation resolves every node
	// whose dependencies settle, so anything still pending here waits on
	// itself.
	p.mu.Lock()
	var stuck []string
	for _, t := range p.order {
		n := p.nodes[t]
		if n.reachable && !n.state.IsTerminal() {
			stuck = append(stuck, t.name)
		}
	}
	p.mu.Unlock()
	if len(stuck) > 0 {
		return &ProcessError{Kind: ErrDependencyCycle, Tasks: stuck}
	}
	return nil
}

// observeCancellation latches the context's cause as the run's abort
// reason, unless a fatal error already decided the outcome.
func (p *Process) observeCancellation(ctx context.Context, rs *runState) {
	if rs.fatal != nil || rs.abort != nil || ctx.Err() == nil {
		return
	}
	rs.abort = context.Cause(ctx)
	p.logger.Warn("cancellation observed", "reason", rs.abort)
}

// evaluate resolves every queued node whose dependencies are all terminal:
// it either becomes ready to start or is skipped. Skips cascade within the
// same call by queueing the skipped node's dependents. A non-optional node
// that would be skipped sets the run's fatal error instead. Must be called
// with p.mu held.
func (p *Process) evaluate(rs *runState, queue []*node) []*node {
	var ready []*node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !n.reachable || n.state != TaskIdle {
			continue
		}

		waiting := false
		for _, e := range n.deps {
			if !e.to.effectiveState().IsTerminal() {
				waiting = true
				break
			}
		}
		if waiting {
			continue
		}

		skip := false
		for _, e := range n.deps {
			if e.weak {
				continue
			}
			if s := e.to.effectiveState(); s == TaskFailed || s == TaskSkipped {
				skip = true
				break
			}
		}
		if !skip {
			ready = append(ready, n)
			continue
		}

		if !n.task.optional {
			err := &ProcessError{Kind: ErrMandatoryTaskSkipped, Tasks: []string{n.task.name}}
			n.state = TaskFailed
			n.failure = err
			rs.terminal++
			if rs.fatal == nil {
				rs.fatal = err
			}
			continue
		}

		n.state = TaskSkipped
		rs.terminal++
		p.logger.Debug("task skipped", "task", n.task.name)
		queue = append(queue, n.dependents...)
	}
	return ready
}

// launchReady starts the batch in descending priority order, registration
// order breaking ties. Each delegate goroutine signals right before the
// delegate call, and the next launch waits for that signal, keeping the
// recorded start order authoritative.
func (p *Process) launchReady(ctx context.Context, rs *runState, batch []*node) {
	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].task.priority != batch[j].task.priority {
			return batch[i].task.priority > batch[j].task.priority
		}
		return batch[i].idx < batch[j].idx
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range batch {
		n.state = TaskRunning
		p.launchOrder = append(p.launchOrder, n.task)
		p.logger.Debug("task started", "task", n.task.name, "priority", n.task.priority)

		started := make(chan struct{})
		go p.invoke(ctx, n, started, rs.doneCh)
		<-started
		rs.inFlight++
	}
}

// invoke runs one delegate and reports its settlement. A panicking
// delegate settles as failed with the recovered value as the error.
func (p *Process) invoke(ctx context.Context, n *node, started chan<- struct{}, done chan<- settlement) {
	close(started)

	var err error
	if recovered := panics.Try(func() { err = n.task.delegate(ctx) }); recovered != nil {
		err = recovered.AsError()
	}
	done <- settlement{node: n, err: err}
}

// applySettlement records one delegate outcome, emits its task event, and
// returns the dependents that became ready. After a fatal error or
// cancellation only the outcome itself is recorded; no further scheduling
// decisions are made.
func (p *Process) applySettlement(rs *runState, s settlement) []*node {
	p.mu.Lock()
	n := s.node
	if s.err != nil {
		n.state = TaskFailed
		n.failure = s.err
	} else {
		n.state = TaskCompleted
	}
	rs.terminal++

	if s.err != nil && !n.task.optional && rs.fatal == nil && rs.abort == nil {
		rs.fatal = &ProcessError{
			Kind:  ErrImportantTaskFailed,
			Tasks: []string{n.task.name},
			Cause: s.err,
		}
	}

	var ready []*node
	if rs.fatal == nil && rs.abort == nil {
		ready = p.evaluate(rs, append([]*node(nil), n.dependents...))
	}
	settled, total := rs.terminal, rs.total
	p.mu.Unlock()

	if s.err != nil {
		p.logger.Warn("task failed", "task", n.task.name, "error", s.err)
	} else {
		p.logger.Debug("task completed", "task", n.task.name)
	}
	p.bus.Publish(string(EventProcess), newTaskEvent(n.task, settled, total, p.TaskState))
	return ready
}
