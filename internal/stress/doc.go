// Package stress exercises the object runtime under contention and checks
// its lifetime invariants while doing so.
//
// Scenarios:
//   - weak-race: last Release racing Weak.Upgrade on fresh objects
//   - broadcast-storm: concurrent broadcasts while clients come and go
//   - collection-churn: concurrent inserts, removals, iteration and dispatch
//     on a shared collection.List
//
// A Runner executes scenarios concurrently through an errgroup and reports
// per-scenario results. Any invariant violation fails the run with
// ErrInvariant.
package stress
