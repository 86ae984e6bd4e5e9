package atomics

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// The Cell family gives atomic load/store/swap/compare-exchange semantics
// to arbitrary fixed-size plain-data values (small structs, enums, floats)
// by reinterpreting their bytes as a native atomic word of the named width.
//
// The width in the type name is a contract: sizeof(T) must equal it exactly,
// checked at construction. Two further preconditions hold for every cell:
//
//   - T must not contain pointer words. The slot is an opaque integer to
//     the garbage collector, so a pointer stored through it would be
//     invisible to GC scanning. Checked at construction.
//   - T should not contain interior padding. CompareExchange compares raw
//     bit patterns, and Go leaves padding bytes unspecified when copying,
//     so a padded T can fail exchanges that compare equal as values. This
//     is a caller precondition, not checked; use the Tolerant cells when T
//     is padded.
//
// Cells of width 1 and 2 are backed by a uint32 slot (Go exposes no
// sub-word atomics); the value lives in the low bytes and the high bytes
// stay zero, so the external contract is unchanged.

// checkCell validates the construction-time contract shared by all cells.
func checkCell[T any](width uintptr, name string) {
	var v T
	if unsafe.Sizeof(v) != width {
		panic(fmt.Sprintf(
			"atomics: %s: size of %T is %d, want %d",
			name, v, unsafe.Sizeof(v), width))
	}
	if typeHasPointers[T]() {
		panic(fmt.Sprintf(
			"atomics: %s: %T contains pointers and cannot be stored as a raw word",
			name, v))
	}
}

// Cell8 is atomic storage for a 1-byte plain-data value.
type Cell8[T any] struct {
	_ noCopy
	u uint32
}

// NewCell8 creates a cell holding v. Panics if sizeof(T) != 1 or if T
// contains pointers.
func NewCell8[T any](v T) *Cell8[T] {
	checkCell[T](1, "Cell8")
	return &Cell8[T]{u: toWord8(v)}
}

// Load returns a copy of the current value.
func (c *Cell8[T]) Load(ord Ordering) T {
	return fromWord8[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *Cell8[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord8(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *Cell8[T]) Swap(v T, ord Ordering) T {
	return fromWord8[T](swapWord(&c.u, toWord8(v)))
}

// CompareExchange replaces the value with new only if its current bit
// pattern equals old. It returns the previously stored value and whether
// the exchange took place. The ordering arguments are accepted for API
// fidelity; the RMW is sequentially consistent either way.
func (c *Cell8[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	o, n := toWord8(old), toWord8(new)
	for {
		if casWord(&c.u, o, n) {
			return old, true
		}
		if cur := loadWord(&c.u, SeqCst); cur != o {
			return fromWord8[T](cur), false
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *Cell8[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// Cell16 is atomic storage for a 2-byte plain-data value.
type Cell16[T any] struct {
	_ noCopy
	u uint32
}

// NewCell16 creates a cell holding v. Panics if sizeof(T) != 2 or if T
// contains pointers.
func NewCell16[T any](v T) *Cell16[T] {
	checkCell[T](2, "Cell16")
	return &Cell16[T]{u: toWord16(v)}
}

// Load returns a copy of the current value.
func (c *Cell16[T]) Load(ord Ordering) T {
	return fromWord16[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *Cell16[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord16(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *Cell16[T]) Swap(v T, ord Ordering) T {
	return fromWord16[T](swapWord(&c.u, toWord16(v)))
}

// CompareExchange replaces the value with new only if its current bit
// pattern equals old. See Cell8.CompareExchange.
func (c *Cell16[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	o, n := toWord16(old), toWord16(new)
	for {
		if casWord(&c.u, o, n) {
			return old, true
		}
		if cur := loadWord(&c.u, SeqCst); cur != o {
			return fromWord16[T](cur), false
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *Cell16[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// Cell32 is atomic storage for a 4-byte plain-data value.
type Cell32[T any] struct {
	_ noCopy
	u uint32
}

// NewCell32 creates a cell holding v. Panics if sizeof(T) != 4 or if T
// contains pointers.
func NewCell32[T any](v T) *Cell32[T] {
	checkCell[T](4, "Cell32")
	return &Cell32[T]{u: toWord32(v)}
}

// Load returns a copy of the current value.
func (c *Cell32[T]) Load(ord Ordering) T {
	return fromWord32[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *Cell32[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord32(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *Cell32[T]) Swap(v T, ord Ordering) T {
	return fromWord32[T](swapWord(&c.u, toWord32(v)))
}

// CompareExchange replaces the value with new only if its current bit
// pattern equals old. See Cell8.CompareExchange.
func (c *Cell32[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	o, n := toWord32(old), toWord32(new)
	for {
		if casWord(&c.u, o, n) {
			return old, true
		}
		if cur := loadWord(&c.u, SeqCst); cur != o {
			return fromWord32[T](cur), false
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *Cell32[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// Cell64 is atomic storage for an 8-byte plain-data value.
type Cell64[T any] struct {
	_ noCopy
	_ [0]atomic.Uint64 // force 8-byte alignment on 32-bit targets
	u uint64
}

// NewCell64 creates a cell holding v. Panics if sizeof(T) != 8 or if T
// contains pointers.
func NewCell64[T any](v T) *Cell64[T] {
	checkCell[T](8, "Cell64")
	return &Cell64[T]{u: toWord64(v)}
}

// Load returns a copy of the current value.
func (c *Cell64[T]) Load(ord Ordering) T {
	return fromWord64[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *Cell64[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWord64(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *Cell64[T]) Swap(v T, ord Ordering) T {
	return fromWord64[T](swapWord(&c.u, toWord64(v)))
}

// CompareExchange replaces the value with new only if its current bit
// pattern equals old. See Cell8.CompareExchange.
func (c *Cell64[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	o, n := toWord64(old), toWord64(new)
	for {
		if casWord(&c.u, o, n) {
			return old, true
		}
		if cur := loadWord(&c.u, SeqCst); cur != o {
			return fromWord64[T](cur), false
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *Cell64[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}

// CellUintptr is atomic storage for a pointer-width plain-data value.
type CellUintptr[T any] struct {
	_ noCopy
	u uintptr
}

// NewCellUintptr creates a cell holding v. Panics if sizeof(T) !=
// sizeof(uintptr) or if T contains pointers.
func NewCellUintptr[T any](v T) *CellUintptr[T] {
	checkCell[T](unsafe.Sizeof(uintptr(0)), "CellUintptr")
	return &CellUintptr[T]{u: toWordUintptr(v)}
}

// Load returns a copy of the current value.
func (c *CellUintptr[T]) Load(ord Ordering) T {
	return fromWordUintptr[T](loadWord(&c.u, ord))
}

// Store atomically replaces the value.
func (c *CellUintptr[T]) Store(v T, ord Ordering) {
	storeWord(&c.u, toWordUintptr(v), ord)
}

// Swap atomically replaces the value and returns the previous one.
func (c *CellUintptr[T]) Swap(v T, ord Ordering) T {
	return fromWordUintptr[T](swapWord(&c.u, toWordUintptr(v)))
}

// CompareExchange replaces the value with new only if its current bit
// pattern equals old. See Cell8.CompareExchange.
func (c *CellUintptr[T]) CompareExchange(old, new T, _, _ Ordering) (T, bool) {
	o, n := toWordUintptr(old), toWordUintptr(new)
	for {
		if casWord(&c.u, o, n) {
			return old, true
		}
		if cur := loadWord(&c.u, SeqCst); cur != o {
			return fromWordUintptr[T](cur), false
		}
	}
}

// Take swaps in the zero value and returns the previous one.
func (c *CellUintptr[T]) Take(ord Ordering) T {
	var zero T
	return c.Swap(zero, ord)
}
