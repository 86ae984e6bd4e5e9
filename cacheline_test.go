package atomics

import (
	"testing"
	"unsafe"
)

func TestCacheLinePad(t *testing.T) {
	if CacheLineSize == 0 || CacheLineSize&(CacheLineSize-1) != 0 {
		t.Fatalf("CacheLineSize = %d, want a power of two", CacheLineSize)
	}
	if unsafe.Sizeof(CacheLinePad{}) != CacheLineSize {
		t.Fatalf("pad occupies %d bytes, want %d",
			unsafe.Sizeof(CacheLinePad{}), CacheLineSize)
	}

	// Padded layout keeps the two hot words on separate lines.
	var striped struct {
		a uint64
		_ CacheLinePad
		b uint64
	}
	off := unsafe.Offsetof(striped.b) - unsafe.Offsetof(striped.a)
	if off < CacheLineSize {
		t.Fatalf("hot words %d bytes apart, want at least %d", off, CacheLineSize)
	}
}
