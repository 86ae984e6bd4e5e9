package atomics

import (
	"sync/atomic"
	"unsafe"

	"github.com/vdrn/atomics/internal/opt"
)

// wordInt is the set of backing slot types a cell may use. Widths 1, 2 and
// 4 share a uint32 slot since Go exposes no sub-word atomics.
type wordInt interface {
	~uint32 | ~uint64 | ~uintptr
}

// loadWord loads the slot under the requested ordering. Relaxed loads are
// plain word reads on TSO targets (never under the race detector);
// everything else upgrades to a sequentially consistent atomic load.
//
//go:nosplit
func loadWord[W wordInt](addr *W, ord Ordering) W {
	if ord == Relaxed && opt.IsTSO_ {
		return *addr
	}
	if unsafe.Sizeof(W(0)) == 4 {
		return W(atomic.LoadUint32((*uint32)(unsafe.Pointer(addr))))
	}
	return W(atomic.LoadUint64((*uint64)(unsafe.Pointer(addr))))
}

// storeWord stores the slot under the requested ordering; same upgrade
// discipline as loadWord.
//
//go:nosplit
func storeWord[W wordInt](addr *W, val W, ord Ordering) {
	if ord == Relaxed && opt.IsTSO_ {
		*addr = val
		return
	}
	if unsafe.Sizeof(W(0)) == 4 {
		atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), uint32(val))
	} else {
		atomic.StoreUint64((*uint64)(unsafe.Pointer(addr)), uint64(val))
	}
}

// swapWord atomically replaces the slot and returns the previous bits.
// Always a full atomic RMW.
//
//go:nosplit
func swapWord[W wordInt](addr *W, val W) W {
	if unsafe.Sizeof(W(0)) == 4 {
		return W(atomic.SwapUint32((*uint32)(unsafe.Pointer(addr)), uint32(val)))
	}
	return W(atomic.SwapUint64((*uint64)(unsafe.Pointer(addr)), uint64(val)))
}

// casWord atomically replaces the slot if it currently holds old.
// Always a full atomic RMW.
//
//go:nosplit
func casWord[W wordInt](addr *W, old, new W) bool {
	if unsafe.Sizeof(W(0)) == 4 {
		return atomic.CompareAndSwapUint32(
			(*uint32)(unsafe.Pointer(addr)), uint32(old), uint32(new))
	}
	return atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(addr)), uint64(old), uint64(new))
}

// ============================================================================
// Value <-> word conversions
// ============================================================================
//
// One function per width and direction is the entire unsafe reinterpretation
// boundary of the cells. Sub-word values occupy the low bytes of a zeroed
// word, so the unused high bytes of the slot are always zero and never
// perturb bit comparisons.

//go:nosplit
func toWord8[T any](v T) uint32 {
	return uint32(*(*uint8)(unsafe.Pointer(&v)))
}

//go:nosplit
func fromWord8[T any](u uint32) T {
	b := uint8(u)
	return *(*T)(unsafe.Pointer(&b))
}

//go:nosplit
func toWord16[T any](v T) uint32 {
	return uint32(*(*uint16)(unsafe.Pointer(&v)))
}

//go:nosplit
func fromWord16[T any](u uint32) T {
	h := uint16(u)
	return *(*T)(unsafe.Pointer(&h))
}

//go:nosplit
func toWord32[T any](v T) uint32 {
	var u uint32
	*(*T)(unsafe.Pointer(&u)) = v
	return u
}

//go:nosplit
func fromWord32[T any](u uint32) T {
	return *(*T)(unsafe.Pointer(&u))
}

//go:nosplit
func toWord64[T any](v T) uint64 {
	var u uint64
	*(*T)(unsafe.Pointer(&u)) = v
	return u
}

//go:nosplit
func fromWord64[T any](u uint64) T {
	return *(*T)(unsafe.Pointer(&u))
}

//go:nosplit
func toWordUintptr[T any](v T) uintptr {
	var u uintptr
	*(*T)(unsafe.Pointer(&u)) = v
	return u
}

//go:nosplit
func fromWordUintptr[T any](u uintptr) T {
	return *(*T)(unsafe.Pointer(&u))
}
