package atomics

import "testing"

func TestOrdering_String(t *testing.T) {
	cases := map[Ordering]string{
		Relaxed:      "Relaxed",
		Acquire:      "Acquire",
		Release:      "Release",
		AcqRel:       "AcqRel",
		SeqCst:       "SeqCst",
		Ordering(99): "Ordering(?)",
	}
	for ord, want := range cases {
		if got := ord.String(); got != want {
			t.Errorf("Ordering(%d).String() = %q, want %q", ord, got, want)
		}
	}
}
