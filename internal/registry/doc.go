// Package registry holds the ordered alarm collection. It validates input
// before mutating, persists the full list after every successful mutation
// (best-effort: a failed write is logged, never rolled back), resolves
// index-or-name selectors, and runs the per-tick trigger evaluation for the
// dispatcher. The registry is single-writer by design and carries no locks;
// all mutation happens on the dispatcher's tick goroutine.
package registry
