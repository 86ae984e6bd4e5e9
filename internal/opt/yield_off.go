//go:build atomics_no_yield

package opt

// Yield_ is forced off by the atomics_no_yield build tag. Backoff never
// calls runtime.Gosched and spins with pause hints regardless of its limit.
const Yield_ = false
