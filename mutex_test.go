package atomics

import (
	"sync"
	"testing"
)

func TestSpinMutex_CounterExact(t *testing.T) {
	m := NewSpinMutex(uint64(0))

	const (
		workers = 2
		perG    = 100000
	)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				g := m.Lock()
				*g.Value()++
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	g := m.Lock()
	defer g.Unlock()
	if got := *g.Value(); got != workers*perG {
		t.Fatalf("counter = %d, want %d", got, workers*perG)
	}
}

func TestSpinMutex_MutualExclusion(t *testing.T) {
	m := NewSpinMutexLimit(0, 2)

	var inside int32
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := m.Lock()
				inside++
				if inside != 1 {
					t.Errorf("critical section occupancy = %d", inside)
				}
				inside--
				g.Unlock()
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		m.With(func(p *int) { *p++ })
	}
	close(stop)
	wg.Wait()
}

func TestSpinMutex_TryLock(t *testing.T) {
	m := NewSpinMutex("idle")

	g, ok := m.TryLock()
	if !ok {
		t.Fatal("TryLock on free mutex failed")
	}
	*g.Value() = "busy"

	if _, ok := m.TryLock(); ok {
		t.Fatal("TryLock on held mutex succeeded")
	}
	g.Unlock()

	g2, ok := m.TryLock()
	if !ok {
		t.Fatal("TryLock after release failed")
	}
	if got := *g2.Value(); got != "busy" {
		t.Fatalf("value = %q, want %q", got, "busy")
	}
	g2.Unlock()
}

func TestSpinMutex_With(t *testing.T) {
	type counters struct {
		Hits, Misses int
	}
	m := NewSpinMutex(counters{})

	m.With(func(c *counters) {
		c.Hits = 3
		c.Misses = 1
	})

	g := m.Lock()
	defer g.Unlock()
	if *g.Value() != (counters{Hits: 3, Misses: 1}) {
		t.Fatalf("value = %+v", *g.Value())
	}
}

func TestMutexGuard_DoubleUnlockPanics(t *testing.T) {
	m := NewSpinMutex(0)
	g := m.Lock()
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Fatal("second Unlock did not panic")
		}
	}()
	g.Unlock()
}

func TestMutexGuard_ValueAfterUnlockPanics(t *testing.T) {
	m := NewSpinMutex(0)
	g := m.Lock()
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Fatal("Value after Unlock did not panic")
		}
	}()
	_ = g.Value()
}
