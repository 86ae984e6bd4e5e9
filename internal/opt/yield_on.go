//go:build !atomics_no_yield

package opt

// Yield_ reports whether Backoff may hand the processor back to the
// scheduler. Disable with the atomics_no_yield build tag for environments
// where a goroutine must never leave the P (e.g. latency-critical pinned
// workers); Backoff then degrades to pause hints only.
const Yield_ = true
