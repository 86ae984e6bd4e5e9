package atomics

import "github.com/vdrn/atomics/internal/opt"

// CacheLineSize is the target architecture's cache line size in bytes,
// derived at compile time.
const CacheLineSize = opt.CacheLineSize_

// CacheLinePad occupies a full cache line. Place it between hot fields
// (striped counters, adjacent lock words) to keep them from false sharing.
type CacheLinePad struct {
	_ [CacheLineSize]byte
}
