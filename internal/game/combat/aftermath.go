package combat

import (
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
)

// Post-bout probabilities.
const (
	// InjureChance is the probability the loser picks up a new injury.
	InjureChance = 0.10
	// LowSeverityChance is the probability a new injury is Low rather than Medium.
	LowSeverityChance = 0.7
	// AggravateChance is the probability an injured participant's injury worsens.
	AggravateChance = 0.35
)

// RollSeverity draws the severity of a fresh injury: Low with probability
// LowSeverityChance, else Medium.
func RollSeverity(src dice.Source) injury.Severity {
	if dice.Chance(src, LowSeverityChance) {
		return injury.Low
	}
	return injury.Medium
}

// Inflict gives c an injury of severity sev under policy and returns the
// matching event.
func Inflict(c *fighter.Combatant, sev injury.Severity, policy injury.Policy) event.Event {
	prev := c.Inflict(sev, policy)
	var from injury.Severity
	if prev.Active() {
		from = prev.Severity
	}
	return event.Event{
		Kind:    event.KindInjuryInflicted,
		Subject: c.Name,
		From:    from,
		To:      c.Injury.Severity,
		Days:    c.Injury.DaysRemaining,
	}
}

// MaybeAggravate worsens c's injury with probability AggravateChance. Healthy
// combatants are skipped without taking a draw.
//
// Postcondition: Returns the aggravation event and true iff c's injury worsened.
func MaybeAggravate(c *fighter.Combatant, src dice.Source) (event.Event, bool) {
	if !c.Injured() || !dice.Chance(src, AggravateChance) {
		return event.Event{}, false
	}
	from, to := c.Injury.Aggravate()
	return event.Event{
		Kind:    event.KindInjuryAggravated,
		Subject: c.Name,
		From:    from,
		To:      to,
		Days:    c.Injury.DaysRemaining,
	}, true
}

// ApplyAftermath runs infliction on the loser, then aggravation checks on the
// winner and then the loser against whatever injury each carries at that
// point. A freshly injured loser can therefore be aggravated in the same call.
//
// Postcondition: Returns the events in the order applied.
func ApplyAftermath(winner, loser *fighter.Combatant, src dice.Source, policy injury.Policy) []event.Event {
	var events []event.Event
	if dice.Chance(src, InjureChance) {
		events = append(events, Inflict(loser, RollSeverity(src), policy))
	}
	for _, c := range [2]*fighter.Combatant{winner, loser} {
		if e, ok := MaybeAggravate(c, src); ok {
			events = append(events, e)
		}
	}
	return events
}
