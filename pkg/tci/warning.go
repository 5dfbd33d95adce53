package tci

import "fmt"

// Warning is a non-fatal condition surfaced during scheduling: a failed
// root-finding search that fell back to a safe default (ErrNonConvergence),
// a dose silently clamped to the configured rate limit (ErrRateCapHit), or
// a user-defined infusion overlapping a targeting window (spec.md §7, §9
// Open Question 1).
type Warning struct {
	Kind   error
	Target string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Target, w.Detail)
}

// WarningSink receives Warning values as scheduling proceeds. A nil sink
// is valid: warnings are then silently dropped, matching RateCapHit's
// "informational only" status in spec.md §7.
type WarningSink interface {
	Warn(Warning)
}

func warn(sink WarningSink, w Warning) {
	if sink == nil {
		return
	}
	sink.Warn(w)
}
