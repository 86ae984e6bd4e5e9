package atomics

import (
	"sync/atomic"
	"unsafe"

	"github.com/brickingsoft/errors"

	"github.com/vdrn/atomics/internal/opt"
)

// The TolerantCell family has the same surface as the Cell family but a
// backend that never treats indeterminate bytes as a correctness hazard:
//
//   - CompareExchange compares the current value against the expectation
//     by typed equality instead of raw bit comparison, so interior padding
//     (whose bytes Go leaves unspecified on copy) can never fail an
//     exchange that should succeed. This is why T is constrained to
//     comparable.
//   - Relaxed loads and stores are unfenced plain word accesses on TSO
//     hardware, leaning on the same aligned-word atomicity guarantee the
//     seqlock optimistic read uses.
//
// The cost is that the backend has no representation the race detector can
// verify: race-instrumented builds refuse construction with
// ErrRaceDetector instead of substituting a non-atomic emulation.

// checkTolerantCell validates the construction-time contract. Size and
// pointer violations are contract breaches and panic like the strict
// cells; backend availability is the only recoverable condition.
func checkTolerantCell[T comparable](width uintptr, name string) error {
	checkCell[T](width, name)
	if opt.Race_ {
		return errors.From(ErrRaceDetector,
			errors.WithMeta("cell", name))
	}
	return nil
}

// TolerantCell8 is uninitialized-byte-tolerant atomic storage for a 1-byte
// value.
type TolerantCell8[T comparable] struct {
	_ noCopy
	u uint32
}

// NewTolerantCell8 creates a cell holding v. Panics if sizeof(T) != 1 or
// if T contains pointers; fails with ErrRaceDetector under -race.
func NewTolerantCell8[T comparable](v T) (*TolerantCell8[T], error) {
	if err := checkTolerantCell[T](1, "TolerantCell8"); err != nil {
		return nil, err
	}
	return &TolerantCell8[T]{u: toWord8(v)}, nil
}

// Load returns a copy of the current value.
func (c *TolerantCell8[T]) Load(ord Ordering) T {
	return fromWord8[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *TolerantCell8[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord8(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *TolerantCell8[T]) Swap(v T, ord Ordering) T {
	return fromWord8[T](swapWord(&c.u, toWord8(v)))
}

// CompareExchange replaces the value with new only if the current value
// equals old as a value (padding-insensitive). It returns the previously
// stored value and whether the exchange took place.
func (c *TolerantCell8[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	n := toWord8(new)
	for {
		cur := loadWord(&c.u, SeqCst)
		if fromWord8[T](cur) != old {
			return fromWord8[T](cur), false
		}
		if casWord(&c.u, cur, n) {
			return old, true
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *TolerantCell8[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// TolerantCell16 is uninitialized-byte-tolerant atomic storage for a
// 2-byte value.
type TolerantCell16[T comparable] struct {
	_ noCopy
	u uint32
}

// NewTolerantCell16 creates a cell holding v. Panics if sizeof(T) != 2 or
// if T contains pointers; fails with ErrRaceDetector under -race.
func NewTolerantCell16[T comparable](v T) (*TolerantCell16[T], error) {
	if err := checkTolerantCell[T](2, "TolerantCell16"); err != nil {
		return nil, err
	}
	return &TolerantCell16[T]{u: toWord16(v)}, nil
}

// Load returns a copy of the current value.
func (c *TolerantCell16[T]) Load(ord Ordering) T {
	return fromWord16[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *TolerantCell16[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord16(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *TolerantCell16[T]) Swap(v T, ord Ordering) T {
	return fromWord16[T](swapWord(&c.u, toWord16(v)))
}

// CompareExchange replaces the value with new only if the current value
// equals old as a value (padding-insensitive).
func (c *TolerantCell16[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	n := toWord16(new)
	for {
		cur := loadWord(&c.u, SeqCst)
		if fromWord16[T](cur) != old {
			return fromWord16[T](cur), false
		}
		if casWord(&c.u, cur, n) {
			return old, true
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *TolerantCell16[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// TolerantCell32 is uninitialized-byte-tolerant atomic storage for a
// 4-byte value.
type TolerantCell32[T comparable] struct {
	_ noCopy
	u uint32
}

// NewTolerantCell32 creates a cell holding v. Panics if sizeof(T) != 4 or
// if T contains pointers; fails with ErrRaceDetector under -race.
func NewTolerantCell32[T comparable](v T) (*TolerantCell32[T], error) {
	if err := checkTolerantCell[T](4, "TolerantCell32"); err != nil {
		return nil, err
	}
	return &TolerantCell32[T]{u: toWord32(v)}, nil
}

// Load returns a copy of the current value.
func (c *TolerantCell32[T]) Load(ord Ordering) T {
	return fromWord32[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *TolerantCell32[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord32(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *TolerantCell32[T]) Swap(v T, ord Ordering) T {
	return fromWord32[T](swapWord(&c.u, toWord32(v)))
}

// CompareExchange replaces the value with new only if the current value
// equals old as a value (padding-insensitive).
func (c *TolerantCell32[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	n := toWord32(new)
	for {
		cur := loadWord(&c.u, SeqCst)
		if fromWord32[T](cur) != old {
			return fromWord32[T](cur), false
		}
		if casWord(&c.u, cur, n) {
			return old, true
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *TolerantCell32[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// TolerantCell64 is uninitialized-byte-tolerant atomic storage for an
// 8-byte value.
type TolerantCell64[T comparable] struct {
	_ noCopy
	_ [0]atomic.Uint64 // force 8-byte alignment on 32-bit targets
	u uint64
}

// NewTolerantCell64 creates a cell holding v. Panics if sizeof(T) != 8 or
// if T contains pointers; fails with ErrRaceDetector under -race.
func NewTolerantCell64[T comparable](v T) (*TolerantCell64[T], error) {
	if err := checkTolerantCell[T](8, "TolerantCell64"); err != nil {
		return nil, err
	}
	return &TolerantCell64[T]{u: toWord64(v)}, nil
}

// Load returns a copy of the current value.
func (c *TolerantCell64[T]) Load(ord Ordering) T {
	return fromWord64[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *TolerantCell64[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord64(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *TolerantCell64[T]) Swap(v T, ord Ordering) T {
	return fromWord64[T](swapWord(&c.u, toWord64(v)))
}

// CompareExchange replaces the value with new only if the current value
// equals old as a value (padding-insensitive).
func (c *TolerantCell64[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	n := toWord64(new)
	for {
		cur := loadWord(&c.u, SeqCst)
		if fromWord64[T](cur) != old {
			return fromWord64[T](cur), false
		}
		if casWord(&c.u, cur, n) {
			return old, true
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *TolerantCell64[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// TolerantCellUintptr is uninitialized-byte-tolerant atomic storage for a
// pointer-width value.
type TolerantCellUintptr[T comparable] struct {
	_ noCopy
	u uintptr
}

// NewTolerantCellUintptr creates a cell holding v. Panics if sizeof(T) !=
// sizeof(uintptr) or if T contains pointers; fails with ErrRaceDetector
// under -race.
func NewTolerantCellUintptr[T comparable](v T) (*TolerantCellUintptr[T], error) {
	if err := checkTolerantCell[T](unsafe.Sizeof(uintptr(0)), "TolerantCellUintptr"); err != nil {
		return nil, err
	}
	return &TolerantCellUintptr[T]{u: toWordUintptr(v)}, nil
}

// Load returns a copy of the current value.
func (c *TolerantCellUintptr[T]) Load(ord Ordering) T {
	return fromWordUintptr[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *TolerantCellUintptr[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWordUintptr(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *TolerantCellUintptr[T]) Swap(v T, ord Ordering) T {
	return fromWordUintptr[T](swapWord(&c.u, toWordUintptr(v)))
}

// CompareExchange replaces the value with new only if the current value
// equals old as a value (padding-insensitive).
func (c *TolerantCellUintptr[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	n := toWordUintptr(new)
	for {
		cur := loadWord(&c.u, SeqCst)
		if fromWordUintptr[T](cur) != old {
			return fromWordUintptr[T](cur), false
		}
		if casWord(&c.u, cur, n) {
			return old, true
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *TolerantCellUintptr[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}
