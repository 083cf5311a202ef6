// Package fighter defines the combatant record shared by the bout engine, the
// injury ledger, and the roster.
package fighter

import "github.com/cory-johannsen/bout/internal/game/injury"

// Standard fighting attribute names.
const (
	Strength  = "strength"
	Technique = "technique"
	Stamina   = "stamina"
	Agility   = "agility"
	Reflexes  = "reflexes"
)

// Standard temperament names read when deciding whether to accept a challenge.
const (
	Craziness = "craziness"
	Dominance = "dominance"
)

// AttributeMin and AttributeMax bound every attribute value.
const (
	AttributeMin = 0
	AttributeMax = 100
)

// Combatant is one fighter on the roster. The roster owns it; the bout engine
// borrows it for the duration of a bout and only mutates Injury.
//
// Precondition: Name is non-empty and unique within the active roster.
type Combatant struct {
	Name        string         `yaml:"name"`
	Attributes  map[string]int `yaml:"attributes"`
	Temperament map[string]int `yaml:"temperament,omitempty"`
	// Injury is nil when the combatant is healthy.
	Injury *injury.State `yaml:"injury,omitempty"`
}

// Attribute returns the named attribute, or 0 if absent.
func (c *Combatant) Attribute(name string) int {
	return c.Attributes[name]
}

// AttributeOr returns the named attribute, or def if absent.
func (c *Combatant) AttributeOr(name string, def int) int {
	if v, ok := c.Attributes[name]; ok {
		return v
	}
	return def
}

// TemperamentValue returns the named temperament trait, or 0 if absent.
func (c *Combatant) TemperamentValue(name string) int {
	return c.Temperament[name]
}

// AdjustAttribute adds delta to an existing attribute, clamped to
// [AttributeMin, AttributeMax]. Absent attributes are left absent.
//
// Postcondition: Returns the new value and true, or 0 and false if absent.
func (c *Combatant) AdjustAttribute(name string, delta int) (int, bool) {
	v, ok := c.Attributes[name]
	if !ok {
		return 0, false
	}
	v = min(AttributeMax, max(AttributeMin, v+delta))
	c.Attributes[name] = v
	return v, true
}

// Injured reports whether the combatant carries a live injury.
func (c *Combatant) Injured() bool {
	return c.Injury.Active()
}

// PerformanceMultiplier returns 1.0 when healthy, else the injury severity's
// preset multiplier. Read-only.
func (c *Combatant) PerformanceMultiplier() float64 {
	return c.Injury.Multiplier()
}

// Inflict applies a new injury of severity sev under policy p and returns the
// injury the combatant carried before (nil if healthy).
//
// Postcondition: c.Injured() is true.
func (c *Combatant) Inflict(sev injury.Severity, p injury.Policy) (prev *injury.State) {
	prev = c.Injury.Clone()
	c.Injury = p.Inflict(c.Injury, sev)
	return prev
}

// HealDay advances the combatant's injury by one day. When the injury reaches
// zero days it is cleared entirely.
//
// Postcondition: Returns healed=true and the severity that healed when the
// injury was removed by this call; c.Injury is nil in that case.
func (c *Combatant) HealDay() (healed bool, sev injury.Severity) {
	if c.Injury == nil {
		return false, 0
	}
	sev = c.Injury.Severity
	if c.Injury.Tick() {
		c.Injury = nil
		return true, sev
	}
	return false, sev
}

// Clone returns a deep copy of c.
func (c *Combatant) Clone() *Combatant {
	out := &Combatant{Name: c.Name, Injury: c.Injury.Clone()}
	if c.Attributes != nil {
		out.Attributes = make(map[string]int, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	if c.Temperament != nil {
		out.Temperament = make(map[string]int, len(c.Temperament))
		for k, v := range c.Temperament {
			out.Temperament[k] = v
		}
	}
	return out
}
