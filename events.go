package boot

import "time"

// EventKind identifies the two observable event streams of a process.
type EventKind string

const (
	// EventProcess fires once per task that actually runs to Completed or
	// Failed. Tasks resolved as Skipped without running do not emit it.
	EventProcess EventKind = "process"
	// EventFinish fires exactly once, at successful finalization, carrying
	// the run's [Result].
	EventFinish EventKind = "finish"
)

// Event is implemented by every payload delivered to process observers.
type Event interface {
	Kind() EventKind
	Timestamp() time.Time
}

// Handler receives process events registered through [Process.On].
type Handler func(Event)

// baseEvent provides the kind/timestamp plumbing shared by all events.
type baseEvent struct {
	kind EventKind
	ts   time.Time
}

func newBaseEvent(kind EventKind) baseEvent {
	return baseEvent{kind: kind, ts: time.Now()}
}

// Kind returns the event stream this event belongs to.
func (e baseEvent) Kind() EventKind { return e.kind }

// Timestamp returns when the event was created.
func (e baseEvent) Timestamp() time.Time { return e.ts }

// TaskEvent reports one task reaching Completed or Failed during a run.
// Delivery is synchronous and follows the order in which tasks settle.
type TaskEvent struct {
	baseEvent

	// Task is the descriptor that settled.
	Task *Task
	// Settled counts the reachable tasks in a terminal state at emission
	// time, including skipped ones.
	Settled int
	// Total is the size of the reachable set for this run.
	Total int
	// StateOf reports the live state of any task in the running process.
	StateOf func(*Task) TaskState
}

func newTaskEvent(task *Task, settled, total int, stateOf func(*Task) TaskState) TaskEvent {
	return TaskEvent{
		baseEvent: newBaseEvent(EventProcess),
		Task:      task,
		Settled:   settled,
		Total:     total,
		StateOf:   stateOf,
	}
}

// FinishEvent carries the final result of a successful run.
type FinishEvent struct {
	baseEvent

	Result *Result
}

func newFinishEvent(result *Result) FinishEvent {
	return FinishEvent{
		baseEvent: newBaseEvent(EventFinish),
		Result:    result,
	}
}

// Compile-time checks that all event types implement Event.
var (
	_ Event = TaskEvent{}
	_ Event = FinishEvent{}
)
