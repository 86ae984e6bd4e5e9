package atomics

import (
	"sync/atomic"
)

// rwWriter is the writer sentinel in the state word. A positive state is
// the count of active readers; the sentinel and a nonzero reader count are
// mutually exclusive by construction.
const rwWriter int32 = -1

// SpinRwLock is a shared/exclusive spinlock owning the value it guards.
//
// Any number of readers may hold the lock simultaneously; a writer holds
// it alone. No priority is enforced between the classes: under sustained
// contention readers can starve a writer and vice versa. This is a
// documented property of the protocol, not a bug.
type SpinRwLock[T any] struct {
	_     noCopy
	state int32
	limit int
	data  T
}

// NewSpinRwLock creates a lock guarding v with the default spin limit.
func NewSpinRwLock[T any](v T) *SpinRwLock[T] {
	return NewSpinRwLockLimit(v, DefaultSpinLimit)
}

// NewSpinRwLockLimit creates a lock guarding v with an explicit backoff
// spin limit.
func NewSpinRwLockLimit[T any](v T, spinLimit int) *SpinRwLock[T] {
	return &SpinRwLock[T]{limit: spinLimit, data: v}
}

// Read acquires shared access, spinning while a writer is active, and
// returns the shared guard.
func (rw *SpinRwLock[T]) Read() RwReadGuard[T] {
	b := NewBackoff(rw.limit)
	cur := atomic.LoadInt32(&rw.state)
	for {
		if cur == rwWriter {
			b.Spin()
			cur = atomic.LoadInt32(&rw.state)
			continue
		}
		if atomic.CompareAndSwapInt32(&rw.state, cur, cur+1) {
			return RwReadGuard[T]{rw: rw}
		}
		b.Spin()
		cur = atomic.LoadInt32(&rw.state)
	}
}

// TryRead attempts to register as a reader exactly once, without spinning.
func (rw *SpinRwLock[T]) TryRead() (RwReadGuard[T], bool) {
	cur := atomic.LoadInt32(&rw.state)
	if cur == rwWriter {
		return RwReadGuard[T]{}, false
	}
	if atomic.CompareAndSwapInt32(&rw.state, cur, cur+1) {
		return RwReadGuard[T]{rw: rw}, true
	}
	return RwReadGuard[T]{}, false
}

// Write acquires exclusive access, spinning until the lock is completely
// free, and returns the exclusive guard.
func (rw *SpinRwLock[T]) Write() RwWriteGuard[T] {
	if atomic.CompareAndSwapInt32(&rw.state, 0, rwWriter) {
		return RwWriteGuard[T]{rw: rw}
	}
	return rw.writeSlow()
}

func (rw *SpinRwLock[T]) writeSlow() RwWriteGuard[T] {
	b := NewBackoff(rw.limit)
	for {
		b.Spin()
		if atomic.CompareAndSwapInt32(&rw.state, 0, rwWriter) {
			return RwWriteGuard[T]{rw: rw}
		}
	}
}

// TryWrite attempts the exclusive CAS exactly once, without spinning.
func (rw *SpinRwLock[T]) TryWrite() (RwWriteGuard[T], bool) {
	if atomic.CompareAndSwapInt32(&rw.state, 0, rwWriter) {
		return RwWriteGuard[T]{rw: rw}, true
	}
	return RwWriteGuard[T]{}, false
}

// RwReadGuard is a shared borrow of a SpinRwLock's value. The zero guard
// is invalid.
type RwReadGuard[T any] struct {
	rw *SpinRwLock[T]
}

// Value returns the guarded value for reading. Mutating through this
// pointer while other readers are active is a data race; the pointer must
// not be used after Unlock.
func (g *RwReadGuard[T]) Value() *T {
	if g.rw == nil {
		panic("atomics: use of released RwReadGuard")
	}
	return &g.rw.data
}

// Unlock deregisters the reader. Exactly one release per guard.
func (g *RwReadGuard[T]) Unlock() {
	rw := g.rw
	if rw == nil {
		panic("atomics: unlock of released RwReadGuard")
	}
	g.rw = nil
	atomic.AddInt32(&rw.state, -1)
}

// RwWriteGuard is the exclusive borrow of a SpinRwLock's value. The zero
// guard is invalid.
type RwWriteGuard[T any] struct {
	rw *SpinRwLock[T]
}

// Value returns the guarded value. The pointer must not be used after
// Unlock.
func (g *RwWriteGuard[T]) Value() *T {
	if g.rw == nil {
		panic("atomics: use of released RwWriteGuard")
	}
	return &g.rw.data
}

// Unlock releases exclusive access. Exactly one release per guard.
func (g *RwWriteGuard[T]) Unlock() {
	rw := g.rw
	if rw == nil {
		panic("atomics: unlock of released RwWriteGuard")
	}
	g.rw = nil
	atomic.StoreInt32(&rw.state, 0)
}
