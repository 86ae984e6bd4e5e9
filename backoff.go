package atomics

import (
	"runtime"
	_ "unsafe" // for linkname

	"github.com/vdrn/atomics/internal/opt"
)

// DefaultSpinLimit is the spin limit used by the lock constructors that do
// not take an explicit one: six doubling rounds (2..64 pause hints) before
// the first yield.
const DefaultSpinLimit = 6

// maxSpinShift bounds the pause-burst shift so 1<<step cannot overflow or
// degenerate into multi-millisecond busy loops under a negative limit.
const maxSpinShift = 16

// Backoff escalates wait intensity between failed acquisition attempts.
//
// The limit selects the policy:
//   - limit > 0: bursts of pause hints, doubling per step, until the step
//     exceeds limit; after that every Spin yields the processor.
//   - limit == 0: every Spin yields immediately.
//   - limit < 0: pause hints only, doubling without yielding.
//
// Yielding requires scheduler support; when it is compiled out
// (atomics_no_yield), the policy degrades to pause hints capped at the
// limit. A Backoff is single-goroutine state and must not be shared.
type Backoff struct {
	limit int
	step  int
}

// NewBackoff returns a Backoff at minimum escalation for the given limit.
func NewBackoff(limit int) Backoff {
	return Backoff{limit: limit, step: 1}
}

// Spin performs one escalation step: a burst of CPU pause hints or, once
// the limit is exhausted, a cooperative yield.
func (b *Backoff) Spin() {
	if b.limit < 0 {
		pause(b.step)
		if b.step < maxSpinShift {
			b.step++
		}
		return
	}
	if b.step > b.limit {
		if opt.Yield_ {
			runtime.Gosched()
			return
		}
		pause(b.limit)
		return
	}
	pause(b.step)
	b.step++
}

// Reset returns the Backoff to minimum escalation. Call it after a
// successful acquisition or validated read ends the contention episode.
func (b *Backoff) Reset() {
	b.step = 1
}

// pause executes 1<<shift pause-hint iterations.
//
//go:nosplit
func pause(shift int) {
	for range 1 << shift {
		runtime_doSpin()
	}
}

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//goland:noinspection ALL
func runtime_doSpin()
