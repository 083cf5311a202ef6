package combat

import (
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/style"
)

// simpleNoise is the noise amplitude added to each side's score in a simple fight.
const simpleNoise = 10.0

// SimpleResult is the outcome of a single-exchange fight.
type SimpleResult struct {
	Style  string
	Winner *fighter.Combatant
	Loser  *fighter.Combatant
	// Scores holds the side1 and side2 scores.
	Scores  [2]float64
	Effects []event.Event
}

// SimpleFight settles a contest with one weighted score per side plus
// uniform(0, 10) noise; side1 wins ties. The loser is injured with
// probability InjureChance. There are no rounds and no aggravation checks.
//
// Postcondition: On a lookup failure returns an error matching
// style.ErrUnknownStyle and touches neither combatant.
func SimpleFight(c1, c2 *fighter.Combatant, styleName string, styles style.Lookup, src dice.Source, policy injury.Policy) (*SimpleResult, error) {
	st, err := styles.Lookup(styleName)
	if err != nil {
		return nil, err
	}
	s1 := style.Skill(c1, st) + dice.Uniform(src, 0, simpleNoise)
	s2 := style.Skill(c2, st) + dice.Uniform(src, 0, simpleNoise)

	res := &SimpleResult{Style: st.Name, Scores: [2]float64{s1, s2}, Winner: c1, Loser: c2}
	if s2 > s1 {
		res.Winner, res.Loser = c2, c1
	}
	if dice.Chance(src, InjureChance) {
		res.Effects = append(res.Effects, Inflict(res.Loser, RollSeverity(src), policy))
	}
	return res, nil
}
