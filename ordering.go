package atomics

// Ordering constrains the cross-thread visibility of a cell operation,
// following the C11/LLVM vocabulary.
//
// Go's sync/atomic package is sequentially consistent, so every ordering a
// caller requests is satisfied by upgrading; the distinction still matters
// on two paths:
//   - Relaxed loads and stores compile to plain word accesses on
//     total-store-order hardware (amd64, 386, s390x) when the race
//     detector is off.
//   - Read-modify-write operations (Swap, CompareExchange) always use full
//     atomics regardless of the requested ordering.
type Ordering uint8

const (
	// Relaxed guarantees atomicity of the single access only.
	Relaxed Ordering = iota
	// Acquire makes prior Release-writes of other threads visible.
	Acquire
	// Release publishes all writes made before it to Acquire-readers.
	Release
	// AcqRel combines Acquire and Release for read-modify-write ops.
	AcqRel
	// SeqCst additionally joins the single total order of all SeqCst ops.
	SeqCst
)

func (o Ordering) String() string {
	switch o {
	case Relaxed:
		return "Relaxed"
	case Acquire:
		return "Acquire"
	case Release:
		return "Release"
	case AcqRel:
		return "AcqRel"
	case SeqCst:
		return "SeqCst"
	default:
		return "Ordering(?)"
	}
}
