// Package sim provides the discrete-event simulation kernel for linesim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Event and the EventHeap (timestamp → sequence ordering)
//   - engine.go: the virtual clock and the RunUntil event loop
//   - process.go: Proc, the Process state-machine interface, and Yield commands
//   - resource.go: capacity-limited Resource with a FIFO wait queue
//
// # Architecture
//
// The kernel knows nothing about manufacturing. Domain models live in
// sub-packages:
//   - sim/factory/: the manufacturing facility and its processes
//   - sim/scenario/: per-run parameter generation
//   - sim/batch/: the run orchestrator, metrics and batch statistics
//
// Processes are explicit state machines. The engine calls Resume when a
// process's suspension condition is met; Resume mutates state and returns the
// next Yield (Timeout, Acquire or Exit). Everything runs on the goroutine that
// calls RunUntil. An Engine and everything attached to it must not be shared
// between goroutines.
package sim
