package atomics

import (
	"sync/atomic"
)

const (
	mutexUnlocked uint32 = 0
	mutexLocked   uint32 = 1
)

// SpinMutex is a mutual-exclusion spinlock owning the value it guards.
//
// Acquisition never blocks on an OS primitive; contended lockers burn CPU
// through Backoff until the CAS succeeds. It is intended for very short
// critical sections (memory access) where parking latency would dominate.
//
// Not reentrant: a goroutine re-entering Lock while holding the guard
// deadlocks. That is a usage contract, not a detected error.
type SpinMutex[T any] struct {
	_     noCopy
	state uint32
	limit int
	data  T
}

// NewSpinMutex creates a mutex guarding v with the default spin limit.
func NewSpinMutex[T any](v T) *SpinMutex[T] {
	return NewSpinMutexLimit(v, DefaultSpinLimit)
}

// NewSpinMutexLimit creates a mutex guarding v with an explicit backoff
// spin limit (see Backoff for the policy encoding).
func NewSpinMutexLimit[T any](v T, spinLimit int) *SpinMutex[T] {
	return &SpinMutex[T]{limit: spinLimit, data: v}
}

// Lock acquires the mutex, spinning until it is free, and returns the
// guard that borrows the value. Release with MutexGuard.Unlock, typically
// deferred.
func (m *SpinMutex[T]) Lock() MutexGuard[T] {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return MutexGuard[T]{m: m}
	}
	return m.lockSlow()
}

func (m *SpinMutex[T]) lockSlow() MutexGuard[T] {
	b := NewBackoff(m.limit)
	for {
		b.Spin()
		if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
			return MutexGuard[T]{m: m}
		}
	}
}

// TryLock attempts the acquisition CAS exactly once, without spinning.
// On failure the returned guard is invalid and must not be used.
func (m *SpinMutex[T]) TryLock() (MutexGuard[T], bool) {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return MutexGuard[T]{m: m}, true
	}
	return MutexGuard[T]{}, false
}

// With runs fn with the lock held. The pointer must not escape fn.
func (m *SpinMutex[T]) With(fn func(*T)) {
	g := m.Lock()
	defer g.Unlock()
	fn(g.Value())
}

// MutexGuard is the exclusive borrow of a SpinMutex's value. The zero
// guard is invalid.
type MutexGuard[T any] struct {
	m *SpinMutex[T]
}

// Value returns the guarded value. The pointer must not be used after
// Unlock.
func (g *MutexGuard[T]) Value() *T {
	if g.m == nil {
		panic("atomics: use of released MutexGuard")
	}
	return &g.m.data
}

// Unlock releases the mutex. Exactly one release per guard: a second call
// panics instead of corrupting the lock state.
func (g *MutexGuard[T]) Unlock() {
	m := g.m
	if m == nil {
		panic("atomics: unlock of released MutexGuard")
	}
	g.m = nil
	atomic.StoreUint32(&m.state, mutexUnlocked)
}
