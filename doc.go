// Package atomics provides busy-wait synchronization primitives for code
// that trades CPU cycles for minimal latency: generic atomic cells for
// plain-data values, exponential backoff, and spin-based mutex,
// reader/writer and sequence locks.
//
// Nothing here blocks on an OS primitive. Contention is resolved by
// spinning with [Backoff], whose only concession to the scheduler is a
// voluntary runtime.Gosched (compiled out with the atomics_no_yield build
// tag). None of the primitives support timeouts or cancellation; bound
// the wait yourself by polling a Try variant.
//
// Race-instrumented builds automatically disable the deliberately
// unfenced fast paths (the tolerant cells and the seqlock's optimistic
// read), substituting conservatively synchronized equivalents or refusing
// construction, never a silent non-atomic emulation.
package atomics
