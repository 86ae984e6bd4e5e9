//go:build !race

package opt

import "runtime"

const Race_ = false

// IsTSO_ reports whether the target has a total-store-order memory model.
// On TSO, plain loads and stores of aligned native words are atomic and
// ordered, so Relaxed accesses and seqlock snapshot copies may skip the
// sync/atomic calls.
const IsTSO_ = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"
