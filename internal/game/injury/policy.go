package injury

import "fmt"

// Policy decides what a new infliction does to an existing injury.
type Policy int

const (
	// PolicyOverwrite replaces any existing injury with the new roll, even
	// when that downgrades a worse injury.
	PolicyOverwrite Policy = iota
	// PolicyKeepWorse never downgrades: the resulting severity is the worse of
	// the two and the days remaining the longer of the two.
	PolicyKeepWorse
)

// String returns the configuration name of p.
func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyKeepWorse:
		return "keep_worse"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "overwrite" or "keep_worse".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "overwrite", "":
		return PolicyOverwrite, nil
	case "keep_worse":
		return PolicyKeepWorse, nil
	default:
		return 0, fmt.Errorf("injury: unknown reinjury policy %q", s)
	}
}

// Inflict returns the injury that results from rolling sev on a combatant
// currently carrying existing (nil when healthy). existing is not modified.
//
// Postcondition: Returns a non-nil, active State.
func (p Policy) Inflict(existing *State, sev Severity) *State {
	fresh := New(sev)
	if p != PolicyKeepWorse || !existing.Active() {
		return fresh
	}
	if existing.Severity > fresh.Severity {
		fresh.Severity = existing.Severity
	}
	fresh.DaysRemaining = max(fresh.DaysRemaining, existing.DaysRemaining)
	return fresh
}
