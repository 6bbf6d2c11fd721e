// Package boot orchestrates graphs of interdependent startup tasks.
//
// A [Task] wraps a delegate function with a name, a scheduling priority,
// an optional flag, and an ordered list of dependencies on other tasks.
// Dependencies are strong by default: a task whose strong dependency
// failed or was skipped is skipped as well. Weak dependencies only order
// execution; the dependent still runs whatever the outcome. A
// non-optional task may not strongly depend on an optional one, which
// [NewTask] rejects at construction.
//
// A [Process] collects tasks and runs them. Tasks registered with
// [Process.Add] form the reachable set together with every task they
// depend on, directly or transitively; tasks known only as dependency
// targets of unreachable tasks stay unreachable and never run.
//
// # Scheduling
//
// [Process.Run] starts every reachable task whose dependencies have all
// settled, highest priority first and registration order among equals.
// Each completion immediately re-evaluates the finished task's
// dependents, so execution proceeds as a rolling frontier rather than in
// lockstep waves. The run settles the whole reachable set exactly once
// and reports the outcome as a [Result] or an error, never both.
//
// Before anything starts, the run fails if a non-optional task is
// unreachable, naming every offender. A non-optional task that fails,
// or that would be skipped, fails the whole run; in-flight tasks still
// settle and their outcomes are recorded.
//
// # Events
//
// [Process.On] subscribes to [EventProcess] and [EventFinish] events.
// Handlers are invoked synchronously in task settlement order, so a
// handler always observes the graph exactly as it was when the event
// fired.
//
// # Cancellation
//
// Run takes a [context.Context]. Cancellation is cooperative: the
// scheduler checks it before starting anything new, running delegates
// receive the same context, and once it fires the run settles what is
// in flight and returns [ErrProcessAborted] wrapping the cause.
//
// # Inheritance
//
// A process built with [WithParents] copies the parents' reachable
// tasks along with their observed states. Terminal states survive the
// copy, so a child graph extends finished work instead of repeating
// it. Running with [SynchronizeWithParents] re-copies the parents'
// current states just before scheduling; [ResetFailedTasks] additionally
// clears failed and skipped inherited states so those tasks get another
// attempt.
package boot
