// Package gridastar provides the open/closed bookkeeping of an A* search over
// a 2D grid, plus a concurrent driver built on it.
//
// The core is State: open entries keyed by Location, closed entries keyed by
// Location, and the operations an A* loop needs (MinOpenEntry, AddOpenEntry,
// Close, IsClosed). Any loop can drive a State directly.
//
// Two driver entry points are included:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// Both use a worker pool to cost neighbors while a single orchestrator owns the State.
package gridastar
