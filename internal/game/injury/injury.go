// Package injury models per-combatant injury state: severity tiers, the static
// preset table, the performance multiplier, aggravation, and day-based healing.
package injury

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity is an injury tier, ordered by worsening.
type Severity int

const (
	Low Severity = iota + 1
	Medium
	Severe
)

// Preset is the fixed days-to-heal, performance multiplier, and label for one
// severity tier.
type Preset struct {
	Days       int
	Multiplier float64
	Label      string
}

var presets = map[Severity]Preset{
	Low:    {Days: 2, Multiplier: 0.90, Label: "Bruise/strain"},
	Medium: {Days: 4, Multiplier: 0.75, Label: "Sprain"},
	Severe: {Days: 7, Multiplier: 0.55, Label: "Major injury"},
}

// Valid reports whether s is one of Low, Medium, Severe.
func (s Severity) Valid() bool {
	_, ok := presets[s]
	return ok
}

// Preset returns the preset for s. Unknown severities fall back to Low.
func (s Severity) Preset() Preset {
	if p, ok := presets[s]; ok {
		return p
	}
	return presets[Low]
}

// Escalate returns the next worse severity. Severe stays Severe; unknown
// severities are returned unchanged.
func (s Severity) Escalate() Severity {
	switch s {
	case Low:
		return Medium
	case Medium, Severe:
		return Severe
	default:
		return s
	}
}

// String returns the lowercase tier name.
func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case Severe:
		return "severe"
	default:
		return "unknown"
	}
}

// ParseSeverity parses "low", "medium" or "severe" (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "severe":
		return Severe, nil
	default:
		return 0, fmt.Errorf("injury: unknown severity %q", s)
	}
}

// MarshalYAML encodes s as its tier name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes a tier name.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseSeverity(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// State is a live injury on one combatant. A nil *State means healthy.
//
// Invariant: a State whose DaysRemaining reaches 0 is removed by the healing
// step that produced it.
type State struct {
	Severity      Severity `yaml:"severity"`
	DaysRemaining int      `yaml:"days_remaining"`
}

// New returns a fresh injury of severity sev with the preset's full duration.
func New(sev Severity) *State {
	return &State{Severity: sev, DaysRemaining: sev.Preset().Days}
}

// Active reports whether s is a live injury. Nil-safe.
func (s *State) Active() bool {
	return s != nil && s.DaysRemaining > 0
}

// Multiplier returns the performance multiplier implied by s: 1.0 when healthy
// or fully healed, otherwise the severity preset's multiplier. Nil-safe and
// read-only.
//
// Postcondition: Returns one of 1.0, 0.90, 0.75, 0.55.
func (s *State) Multiplier() float64 {
	if !s.Active() {
		return 1.0
	}
	return s.Severity.Preset().Multiplier
}

// Aggravate escalates the severity one step and extends DaysRemaining to
// max(DaysRemaining+1, preset days of the new severity).
//
// Precondition: s must be non-nil.
// Postcondition: Returns the severity before and after escalation.
func (s *State) Aggravate() (from, to Severity) {
	from = s.Severity
	to = from.Escalate()
	s.Severity = to
	s.DaysRemaining = max(s.DaysRemaining+1, to.Preset().Days)
	return from, to
}

// Tick advances s by one day, flooring DaysRemaining at 0.
//
// Precondition: s must be non-nil.
// Postcondition: Returns true when DaysRemaining is 0; the caller must then
// discard s.
func (s *State) Tick() bool {
	if s.DaysRemaining > 0 {
		s.DaysRemaining--
	}
	return s.DaysRemaining == 0
}

// Clone returns an independent copy of s. Nil-safe.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
