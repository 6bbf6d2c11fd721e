package boot

// nodeSnapshot captures one parent node's observable state while the
// parent's mutex is held, so copying into the child happens lock-free.
type nodeSnapshot struct {
	task    *Task
	state   TaskState
	failure error
}

// inheritFrom deep-copies parent's reachable nodes into p. Each copied node
// is a fresh wrapper with its own edges, rebuilt against p's node set, so
// parent and child never share mutable structure. Terminal states are
// preserved as observed at copy time; non-terminal states copy as Idle.
// Called only during construction, with p.mu held. A disposed parent has
// nothing left to copy.
func (p *Process) inheritFrom(parent *Process) {
	snaps, _ := parent.snapshotReachable()
	for _, snap := range snaps {
		p.addNode(snap.task)
		n := p.nodes[snap.task]
		if snap.state.IsTerminal() {
			n.state = snap.state
			n.failure = snap.failure
		}
	}
}

// snapshotReachable returns the current reachable set with states, in
// registration order, and whether the process has been disposed.
func (p *Process) snapshotReachable() ([]nodeSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == StatusDisposed {
		return nil, true
	}
	snaps := make([]nodeSnapshot, 0, len(p.order))
	for _, t := range p.order {
		n := p.nodes[t]
		if !n.reachable {
			continue
		}
		snaps = append(snaps, nodeSnapshot{task: t, state: n.state, failure: n.failure})
	}
	return snaps, false
}

// syncWithParents resets every node, then overlays each parent's current
// terminal states onto matching nodes, so already-settled work is not
// repeated. With resetFailed, inherited Failed/Skipped outcomes stay Idle
// for re-execution. When several parents share a task, later parents win.
// Must be called with p.mu held.
func (p *Process) syncWithParents(resetFailed bool) error {
	p.resetNodes()

	for _, parent := range p.parents {
		snaps, disposed := parent.snapshotReachable()
		if disposed {
			return &ProcessError{Kind: ErrParentDisposed, Tasks: []string{parent.id}}
		}
		for _, snap := range snaps {
			if !snap.state.IsTerminal() {
				continue
			}
			if resetFailed && snap.state != TaskCompleted {
				continue
			}
			n, ok := p.nodes[snap.task]
			if !ok || !n.reachable {
				continue
			}
			n.state = snap.state
			n.failure = snap.failure
		}
	}
	return nil
}

// resetNodes returns every node to Idle for a fresh run. Must be called
// with p.mu held.
func (p *Process) resetNodes() {
	for _, n := range p.nodes {
		n.state = TaskIdle
		n.failure = nil
	}
}
