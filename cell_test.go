package atomics

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

type rgba struct {
	R, G, B, A uint8
}

type pair32 struct {
	Lo, Hi uint32
}

func TestCell_RoundTrip(t *testing.T) {
	t.Run("8", func(t *testing.T) {
		c := NewCell8[int8](-7)
		if got := c.Load(SeqCst); got != -7 {
			t.Fatalf("Load = %d, want -7", got)
		}
		c.Store(42, Release)
		if got := c.Load(Acquire); got != 42 {
			t.Fatalf("Load = %d, want 42", got)
		}
	})

	t.Run("16", func(t *testing.T) {
		type point struct{ X, Y int8 }
		c := NewCell16(point{X: -1, Y: 100})
		c.Store(point{X: 3, Y: -4}, SeqCst)
		if got := c.Load(SeqCst); got != (point{X: 3, Y: -4}) {
			t.Fatalf("Load = %+v", got)
		}
	})

	t.Run("32", func(t *testing.T) {
		c := NewCell32(float32(1.5))
		c.Store(float32(math.Pi), Relaxed)
		if got := c.Load(Relaxed); got != float32(math.Pi) {
			t.Fatalf("Load = %v, want pi", got)
		}

		s := NewCell32(rgba{R: 1, G: 2, B: 3, A: 4})
		s.Store(rgba{R: 9, G: 8, B: 7, A: 6}, SeqCst)
		if got := s.Load(SeqCst); got != (rgba{R: 9, G: 8, B: 7, A: 6}) {
			t.Fatalf("Load = %+v", got)
		}
	})

	t.Run("64", func(t *testing.T) {
		c := NewCell64(math.Inf(-1))
		c.Store(math.Pi, SeqCst)
		if got := c.Load(SeqCst); got != math.Pi {
			t.Fatalf("Load = %v, want pi", got)
		}

		s := NewCell64(pair32{Lo: 1, Hi: 2})
		s.Store(pair32{Lo: 0xdead, Hi: 0xbeef}, SeqCst)
		if got := s.Load(SeqCst); got != (pair32{Lo: 0xdead, Hi: 0xbeef}) {
			t.Fatalf("Load = %+v", got)
		}
	})

	t.Run("uintptr", func(t *testing.T) {
		c := NewCellUintptr(uintptr(11))
		c.Store(uintptr(0x55aa), SeqCst)
		if got := c.Load(SeqCst); got != uintptr(0x55aa) {
			t.Fatalf("Load = %#x", got)
		}
	})
}

func TestCell_SwapAndTake(t *testing.T) {
	c := NewCell32(uint32(5))
	if old := c.Swap(6, SeqCst); old != 5 {
		t.Fatalf("Swap returned %d, want 5", old)
	}
	if old := c.Take(SeqCst); old != 6 {
		t.Fatalf("Take returned %d, want 6", old)
	}
	if got := c.Load(SeqCst); got != 0 {
		t.Fatalf("Load after Take = %d, want 0", got)
	}
}

func TestCell_CompareExchange(t *testing.T) {
	c := NewCell64(pair32{Lo: 1, Hi: 2})

	prev, ok := c.CompareExchange(pair32{Lo: 1, Hi: 2}, pair32{Lo: 3, Hi: 4}, AcqRel, Acquire)
	if !ok || prev != (pair32{Lo: 1, Hi: 2}) {
		t.Fatalf("CompareExchange = %+v, %v; want success with old value", prev, ok)
	}

	prev, ok = c.CompareExchange(pair32{Lo: 1, Hi: 2}, pair32{Lo: 9, Hi: 9}, SeqCst, SeqCst)
	if ok {
		t.Fatal("CompareExchange succeeded with stale expectation")
	}
	if prev != (pair32{Lo: 3, Hi: 4}) {
		t.Fatalf("failed CompareExchange returned %+v, want current value", prev)
	}
}

func TestCell_ConcurrentCASCounter(t *testing.T) {
	const (
		workers = 4
		perG    = 10000
	)
	c := NewCell64(uint64(0))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range perG {
				for {
					cur := c.Load(Acquire)
					if _, ok := c.CompareExchange(cur, cur+1, AcqRel, Acquire); ok {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := c.Load(SeqCst); got != workers*perG {
		t.Fatalf("counter = %d, want %d", got, workers*perG)
	}
}

func TestCell_ConcurrentStoreLoadNoTearing(t *testing.T) {
	// Writers publish only self-consistent pairs; any torn load would
	// break the Lo==^Hi relation.
	c := NewCell64(pair32{Lo: 0, Hi: ^uint32(0)})

	var bad atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint32(0); ; i++ {
			select {
			case <-stop:
				return
			default:
				c.Store(pair32{Lo: i, Hi: ^i}, Release)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				v := c.Load(Acquire)
				if v.Hi != ^v.Lo {
					bad.Add(1)
				}
			}
		}
	}()

	for range 200000 {
		v := c.Load(Relaxed)
		if v.Hi != ^v.Lo {
			bad.Add(1)
		}
	}
	close(stop)
	wg.Wait()

	if bad.Load() != 0 {
		t.Fatalf("torn loads: %d", bad.Load())
	}
}

func TestCell_SizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewCell32 with 8-byte value did not panic")
		}
	}()
	NewCell32(uint64(0))
}

func TestCell_PointerTypePanics(t *testing.T) {
	var p *int
	if unsafe.Sizeof(p) != unsafe.Sizeof(uintptr(0)) {
		t.Skip("pointer size differs from uintptr")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("NewCellUintptr with pointer value did not panic")
		}
	}()
	NewCellUintptr(p)
}
