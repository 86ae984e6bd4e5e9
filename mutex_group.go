package atomics

import (
	"sync/atomic"

	"github.com/llxisdsh/pb"
)

// SpinMutexGroup provides a SpinMutex per arbitrary key (string, int,
// struct, ...) without pre-allocating locks.
//
// Entries are reference counted: a key's lock exists only while someone
// holds or waits for it, and is reclaimed on the last Unlock. The per-key
// protocol is the SpinMutex CAS loop, so critical sections should be as
// short as for any spinlock.
//
// Usage:
//
//	var group SpinMutexGroup[string]
//	group.Lock("user-123")
//	// critical section for user-123
//	group.Unlock("user-123")
type SpinMutexGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *groupEntry]
}

type groupEntry struct {
	mu  SpinMutex[struct{}]
	g   MutexGuard[struct{}]
	ref int32
}

// Lock acquires the lock for k, creating it on first use.
func (g *SpinMutexGroup[K]) Lock(k K) {
	e := g.retain(k)
	e.g = e.mu.Lock()
}

// TryLock attempts the lock for k exactly once, without spinning.
func (g *SpinMutexGroup[K]) TryLock(k K) bool {
	e := g.retain(k)
	guard, ok := e.mu.TryLock()
	if !ok {
		g.release(k)
		return false
	}
	e.g = guard
	return true
}

// Unlock releases the lock for k and reclaims the entry when no one else
// holds or waits for it. Unlocking a key with no entry is a no-op;
// unlocking a key currently held by another goroutine is a usage error
// and releases that holder's lock.
func (g *SpinMutexGroup[K]) Unlock(k K) {
	var e *groupEntry
	g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				e = l.Value
			}
			return l, e, l != nil
		})
	if e == nil {
		return
	}
	guard := e.g
	e.g = MutexGuard[struct{}]{}
	guard.Unlock()
	g.release(k)
}

// retain bumps the entry's reference count, creating it if needed.
func (g *SpinMutexGroup[K]) retain(k K) *groupEntry {
	var e *groupEntry
	g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				e = l.Value
				atomic.AddInt32(&e.ref, 1)
				return l, e, true
			}
			e = &groupEntry{ref: 1}
			return &pb.EntryOf[K, *groupEntry]{Value: e}, e, false
		})
	return e
}

// release drops one reference and deletes the entry at zero.
func (g *SpinMutexGroup[K]) release(k K) {
	g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			if atomic.AddInt32(&l.Value.ref, -1) == 0 {
				return nil, nil, true
			}
			return l, l.Value, true
		})
}
