package atomics

import "sync/atomic"

// Bit locks embed a mutual-exclusion bit into a caller-owned word, so a
// lock can live inside existing metadata without its own allocation or
// cache line. The word's other bits are preserved across lock and unlock.
//
// The protocol is the SpinMutex CAS loop with a mask instead of a whole
// word; the same reentrancy and no-OS-blocking contracts apply.

// BitLock32 acquires the bits of mask in *addr, spinning with the default
// backoff until (*addr & mask) == 0 and the CAS lands.
func BitLock32(addr *uint32, mask uint32) {
	cur := atomic.LoadUint32(addr)
	if atomic.CompareAndSwapUint32(addr, cur&^mask, cur|mask) {
		return
	}
	bitLockSlow32(addr, mask)
}

func bitLockSlow32(addr *uint32, mask uint32) {
	b := NewBackoff(DefaultSpinLimit)
	for !TryBitLock32(addr, mask) {
		b.Spin()
	}
}

// TryBitLock32 attempts to acquire the mask bits without backing off.
// It retries only on CAS interference from unrelated bits; a held lock
// fails immediately.
//
//go:nosplit
func TryBitLock32(addr *uint32, mask uint32) bool {
	for {
		cur := atomic.LoadUint32(addr)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(addr, cur, cur|mask) {
			return true
		}
	}
}

// BitUnlock32 releases the mask bits, preserving the rest of the word.
// The clear is a single atomic AND, so holders of disjoint masks in the
// same word may unlock concurrently.
//
//go:nosplit
func BitUnlock32(addr *uint32, mask uint32) {
	atomic.AndUint32(addr, ^mask)
}

// BitUnlockStore32 releases the mask bits while publishing value's other
// bits in the same store.
//
//go:nosplit
func BitUnlockStore32(addr *uint32, mask uint32, value uint32) {
	atomic.StoreUint32(addr, value&^mask)
}

// BitLock64 acquires the bits of mask in *addr; see BitLock32.
func BitLock64(addr *uint64, mask uint64) {
	cur := atomic.LoadUint64(addr)
	if atomic.CompareAndSwapUint64(addr, cur&^mask, cur|mask) {
		return
	}
	bitLockSlow64(addr, mask)
}

func bitLockSlow64(addr *uint64, mask uint64) {
	b := NewBackoff(DefaultSpinLimit)
	for !TryBitLock64(addr, mask) {
		b.Spin()
	}
}

// TryBitLock64 attempts to acquire the mask bits without backing off.
//
//go:nosplit
func TryBitLock64(addr *uint64, mask uint64) bool {
	for {
		cur := atomic.LoadUint64(addr)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint64(addr, cur, cur|mask) {
			return true
		}
	}
}

// BitUnlock64 releases the mask bits, preserving the rest of the word.
// See BitUnlock32 for the concurrency contract.
//
//go:nosplit
func BitUnlock64(addr *uint64, mask uint64) {
	atomic.AndUint64(addr, ^mask)
}

// BitUnlockStore64 releases the mask bits while publishing value's other
// bits in the same store.
//
//go:nosplit
func BitUnlockStore64(addr *uint64, mask uint64, value uint64) {
	atomic.StoreUint64(addr, value&^mask)
}

// BitLockUintptr acquires the bits of mask in *addr; see BitLock32.
func BitLockUintptr(addr *uintptr, mask uintptr) {
	cur := atomic.LoadUintptr(addr)
	if atomic.CompareAndSwapUintptr(addr, cur&^mask, cur|mask) {
		return
	}
	bitLockSlowUintptr(addr, mask)
}

func bitLockSlowUintptr(addr *uintptr, mask uintptr) {
	b := NewBackoff(DefaultSpinLimit)
	for !TryBitLockUintptr(addr, mask) {
		b.Spin()
	}
}

// TryBitLockUintptr attempts to acquire the mask bits without backing off.
//
//go:nosplit
func TryBitLockUintptr(addr *uintptr, mask uintptr) bool {
	for {
		cur := atomic.LoadUintptr(addr)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUintptr(addr, cur, cur|mask) {
			return true
		}
	}
}

// BitUnlockUintptr releases the mask bits, preserving the rest of the word.
// See BitUnlock32 for the concurrency contract.
//
//go:nosplit
func BitUnlockUintptr(addr *uintptr, mask uintptr) {
	atomic.AndUintptr(addr, ^mask)
}

// BitUnlockStoreUintptr releases the mask bits while publishing value's
// other bits in the same store.
//
//go:nosplit
func BitUnlockStoreUintptr(addr *uintptr, mask uintptr, value uintptr) {
	atomic.StoreUintptr(addr, value&^mask)
}
