package atomics

import "github.com/brickingsoft/errors"

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "atomics"
)

var (
	// ErrRaceDetector is returned when a backend relying on unfenced word
	// access is requested in a build instrumented with the race detector.
	// Such backends are refused outright rather than silently emulated
	// with non-atomic code the detector would flag.
	ErrRaceDetector = errors.New(
		"backend is unavailable under the race detector",
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
)

// IsRaceDetector reports whether err stems from requesting a backend the
// race-instrumented build disables.
func IsRaceDetector(err error) bool {
	return errors.Is(err, ErrRaceDetector)
}
