package atomics

import (
	"encoding/json"
	"sync/atomic"
	"unsafe"

	"github.com/brickingsoft/errors"

	"github.com/vdrn/atomics/internal/opt"
)

// SeqLock is a sequence lock owning the value it guards: many lock-free
// optimistic readers, one exclusive writer at a time.
//
// The sequence counter's parity encodes writer state: even while the last
// committed value is stable, odd exactly while a writer mutates in place.
// Every completed write advances the counter by exactly 2, so a reader
// that observes the same even count before and after its copy knows the
// copy corresponds to a single committed write.
//
// T must be a plain, self-contained snapshot value. In particular it must
// not contain pointers: an optimistic reader may copy mid-write, and a
// torn pointer held in a live local is unsafe under the garbage collector.
// Construction panics on pointer-containing T.
//
// Under the race detector readers fall back to the writer's CAS-exclusive
// protocol so that every data access carries a synchronization edge the
// detector understands; the optimistic copy is compiled out rather than
// reported as the formal data race it technically is.
type SeqLock[T any] struct {
	_     noCopy
	seq   uintptr
	limit int
	data  T
}

// NewSeqLock creates a sequence lock guarding v with the default spin
// limit. Panics if T contains pointers.
func NewSeqLock[T any](v T) *SeqLock[T] {
	return NewSeqLockLimit(v, DefaultSpinLimit)
}

// NewSeqLockLimit creates a sequence lock guarding v with an explicit
// backoff spin limit. Panics if T contains pointers.
func NewSeqLockLimit[T any](v T, spinLimit int) *SeqLock[T] {
	if typeHasPointers[T]() {
		panic("atomics: SeqLock: T contains pointers and cannot be copied optimistically")
	}
	return &SeqLock[T]{limit: spinLimit, data: v}
}

// beginRead enters the reader window if the sequence is even.
//
//go:nosplit
func (l *SeqLock[T]) beginRead() (s1 uintptr, ok bool) {
	s1 = atomic.LoadUintptr(&l.seq)
	return s1, s1&1 == 0
}

// endRead verifies window stability: true if the sequence is unchanged.
//
//go:nosplit
func (l *SeqLock[T]) endRead(s1 uintptr) bool {
	return atomic.LoadUintptr(&l.seq) == s1
}

// beginWrite enters the writer window by CASing the sequence to odd.
//
//go:nosplit
func (l *SeqLock[T]) beginWrite() (s1 uintptr, ok bool) {
	s1 = atomic.LoadUintptr(&l.seq)
	if s1&1 != 0 {
		return s1, false
	}
	return s1, atomic.CompareAndSwapUintptr(&l.seq, s1, s1|1)
}

// Write acquires exclusive write access, spinning while another writer is
// active, and returns the guard for in-place mutation. Releasing the guard
// publishes the mutation by storing sequence+2.
func (l *SeqLock[T]) Write() SeqWriteGuard[T] {
	if s1, ok := l.beginWrite(); ok {
		return SeqWriteGuard[T]{l: l, s1: s1}
	}
	return l.writeSlow()
}

func (l *SeqLock[T]) writeSlow() SeqWriteGuard[T] {
	b := NewBackoff(l.limit)
	for {
		b.Spin()
		if s1, ok := l.beginWrite(); ok {
			return SeqWriteGuard[T]{l: l, s1: s1}
		}
	}
}

// TryWrite attempts the writer CAS exactly once, without spinning.
func (l *SeqLock[T]) TryWrite() (SeqWriteGuard[T], bool) {
	if s1, ok := l.beginWrite(); ok {
		return SeqWriteGuard[T]{l: l, s1: s1}, true
	}
	return SeqWriteGuard[T]{}, false
}

// Read returns a validated snapshot: a copy taken inside a stable window
// (sequence even and unchanged across the copy). The returned value always
// corresponds to a single committed write, never a torn intermediate.
func (l *SeqLock[T]) Read() T {
	if opt.Race_ {
		return l.readExclusive()
	}
	if s1, ok := l.beginRead(); ok {
		v := l.readUnfenced()
		if l.endRead(s1) {
			return v
		}
	}
	return l.readSlow()
}

func (l *SeqLock[T]) readSlow() T {
	b := NewBackoff(l.limit)
	for {
		if s1, ok := l.beginRead(); ok {
			v := l.readUnfenced()
			if l.endRead(s1) {
				return v
			}
			// A write landed during the copy; the counter moved, so the
			// writer is gone or about to be. Retry immediately.
			continue
		}
		b.Spin()
	}
}

// ReadOptimistic returns a validated snapshot like Read, but copies the
// value with plain loads only, no synchronizing access besides the two
// counter reads. Real compilers and hardware tolerate this race on a
// value that is re-validated and discarded on mismatch, but the race
// detector rightly flags it, so race-instrumented builds take the
// exclusive path instead.
func (l *SeqLock[T]) ReadOptimistic() T {
	if opt.Race_ {
		return l.readExclusive()
	}
	if s1, ok := l.beginRead(); ok {
		v := l.data
		if l.endRead(s1) {
			return v
		}
	}
	return l.readOptimisticSlow()
}

func (l *SeqLock[T]) readOptimisticSlow() T {
	b := NewBackoff(l.limit)
	for {
		if s1, ok := l.beginRead(); ok {
			v := l.data
			if l.endRead(s1) {
				return v
			}
			continue
		}
		b.Spin()
	}
}

// readExclusive snapshots through the writer protocol. All data access is
// then ordered by the CAS/store pair on the sequence word, which race
// instrumentation tracks.
func (l *SeqLock[T]) readExclusive() T {
	g := l.Write()
	v := l.data
	g.Unlock()
	return v
}

// readUnfenced copies the guarded value inside a stable window. On TSO a
// plain typed copy suffices; on weak memory models the copy uses
// uintptr-sized atomic loads when alignment and size permit, otherwise a
// typed copy.
func (l *SeqLock[T]) readUnfenced() (v T) {
	if opt.IsTSO_ {
		return l.data
	}

	if unsafe.Sizeof(l.data) == 0 {
		return v
	}

	ws := unsafe.Sizeof(uintptr(0))
	sz := unsafe.Sizeof(l.data)
	al := unsafe.Alignof(l.data)
	if al >= ws && sz%ws == 0 {
		n := sz / ws
		for i := range n {
			off := i * ws
			src := (*uintptr)(unsafe.Pointer(
				uintptr(unsafe.Pointer(&l.data)) + off,
			))
			dst := (*uintptr)(unsafe.Pointer(
				uintptr(unsafe.Pointer(&v)) + off,
			))
			*dst = atomic.LoadUintptr(src)
		}
		return v
	}
	return l.data
}

// Store publishes v as a committed write.
func (l *SeqLock[T]) Store(v T) {
	g := l.Write()
	*g.Value() = v
	g.Unlock()
}

// Swap publishes v and returns the previously committed value.
func (l *SeqLock[T]) Swap(v T) T {
	g := l.Write()
	p := g.Value()
	old := *p
	*p = v
	g.Unlock()
	return old
}

// Take publishes the zero value and returns the previously committed one.
func (l *SeqLock[T]) Take() T {
	var zero T
	return l.Swap(zero)
}

// Update runs fn on the guarded value under the write lock.
func (l *SeqLock[T]) Update(fn func(*T)) {
	g := l.Write()
	defer g.Unlock()
	fn(g.Value())
}

// MarshalJSON serializes a snapshot obtained through the validated read
// path. Optimistic copies are never serialized.
func (l *SeqLock[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Read())
}

// UnmarshalJSON decodes into a scratch value and publishes it as a single
// committed write.
func (l *SeqLock[T]) UnmarshalJSON(b []byte) error {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.New("decode into sequence lock failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(err))
	}
	l.Store(v)
	return nil
}

// SeqWriteGuard is the exclusive write borrow of a SeqLock. The zero guard
// is invalid.
type SeqWriteGuard[T any] struct {
	l  *SeqLock[T]
	s1 uintptr
}

// Value returns the guarded value for in-place mutation. Optimistic
// readers may be copying concurrently; their copies are discarded by the
// sequence check. The pointer must not be used after Unlock.
func (g *SeqWriteGuard[T]) Value() *T {
	if g.l == nil {
		panic("atomics: use of released SeqWriteGuard")
	}
	return &g.l.data
}

// Unlock commits the write by storing sequence+2 (odd back to even).
// Exactly one release per guard.
func (g *SeqWriteGuard[T]) Unlock() {
	l := g.l
	if l == nil {
		panic("atomics: unlock of released SeqWriteGuard")
	}
	g.l = nil
	atomic.StoreUintptr(&l.seq, g.s1+2)
}
