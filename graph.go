package boot

// node is the per-process wrapper around one task descriptor. The same
// descriptor is wrapped by a fresh node in every process that registers it;
// node state belongs to exactly one process and is guarded by its mutex.
type node struct {
	task *Task
	idx  int // registration position, breaks priority ties

	// deps and dependents are populated when the node is linked into the
	// reachable set; an unreachable node carries no edges.
	deps       []depEdge
	dependents []*node

	reachable bool
	state     TaskState
	failure   error
}

// depEdge is one resolved dependency relation.
type depEdge struct {
	to   *node
	weak bool
}

// effectiveState is the state dependents observe for wait/skip decisions.
// An unreachable dependency never runs, so dependents see it as Skipped.
func (n *node) effectiveState() TaskState {
	if !n.reachable {
		return TaskSkipped
	}
	return n.state
}

// addNode registers a task, then re-scans the unreachable set so that any
// node the new registration satisfies is promoted. Duplicate registrations
// are ignored. Must be called with p.mu held.
func (p *Process) addNode(t *Task) {
	if _, exists := p.nodes[t]; exists {
		return
	}
	p.nodes[t] = &node{
		task:  t,
		idx:   len(p.order),
		state: TaskIdle,
	}
	p.order = append(p.order, t)
	p.promote()
}

// promote repeatedly scans the unreachable set, linking every node whose
// full dependency list is now present, until one pass links nothing new.
// Must be called with p.mu held.
func (p *Process) promote() {
	for {
		promoted := false
		for _, t := range p.order {
			n := p.nodes[t]
			if n.reachable {
				continue
			}
			if p.tryLink(n) {
				promoted = true
			}
		}
		if !promoted {
			return
		}
	}
}

// tryLink resolves n's declared dependencies against registered nodes.
// Resolution requires presence, not reachability: a forward reference to an
// unreachable node still links. On success the node joins the reachable set
// with edges in both directions. Must be called with p.mu held.
func (p *Process) tryLink(n *node) bool {
	for _, dep := range n.task.deps {
		if _, ok := p.nodes[dep.Task]; !ok {
			return false
		}
	}

	edges := make([]depEdge, 0, len(n.task.deps))
	for _, dep := range n.task.deps {
		target := p.nodes[dep.Task]
		edges = append(edges, depEdge{to: target, weak: dep.Weak})
		if !containsNode(target.dependents, n) {
			target.dependents = append(target.dependents, n)
		}
	}
	n.deps = edges
	n.reachable = true
	return true
}

func containsNode(nodes []*node, n *node) bool {
	for _, candidate := range nodes {
		if candidate == n {
			return true
		}
	}
	return false
}

// idleReachable returns the reachable nodes still Idle, in registration
// order. Must be called with p.mu held.
func (p *Process) idleReachable() []*node {
	var idle []*node
	for _, t := range p.order {
		n := p.nodes[t]
		if n.reachable && n.state == TaskIdle {
			idle = append(idle, n)
		}
	}
	return idle
}
