// Package progress defines primitives for reporting and aggregating what a
// module runtime is doing: imports, cache hits, reloads and session
// activity. It abstracts away the delivery mechanism so that callers can
// consume progress updates uniformly whether they arrive via callbacks,
// in-memory counters or external observers.
package progress
