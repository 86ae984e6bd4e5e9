//go:build race

package opt

const Race_ = true

// IsTSO_ is forced off under the race detector so every shared access
// goes through sync/atomic and carries a sync edge the detector
// understands.
const IsTSO_ = false
