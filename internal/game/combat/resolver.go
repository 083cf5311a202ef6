package combat

import (
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/style"
)

// tieBreakSkillDivisor weights effective base skill against remaining stamina
// when the cards are level.
const tieBreakSkillDivisor = 50.0

// EffectiveBase returns a combatant's base skill under st scaled once by its
// injury performance multiplier.
func EffectiveBase(c *fighter.Combatant, st *style.Style) float64 {
	return style.Skill(c, st) * c.PerformanceMultiplier()
}

// decideWinner picks the bout winner from the cards. Level cards go to the
// side with the higher stamina + base/50; an exact tie there goes to Side1.
//
// Postcondition: tieBreak is true iff cards.Side1 == cards.Side2.
func decideWinner(cards Cards, stamina [2]int, base [2]float64) (winner Side, tieBreak bool) {
	switch {
	case cards.Side1 > cards.Side2:
		return Side1, false
	case cards.Side2 > cards.Side1:
		return Side2, false
	}
	score1 := float64(stamina[0]) + base[0]/tieBreakSkillDivisor
	score2 := float64(stamina[1]) + base[1]/tieBreakSkillDivisor
	if score2 > score1 {
		return Side2, true
	}
	return Side1, true
}

// Resolve simulates a bout between c1 and c2 under st and picks the winner.
// It reads both combatants but mutates neither.
//
// Precondition: c1, c2, st, src are non-nil; c1 and c2 are distinct.
// Postcondition: Cards.Side1 + Cards.Side2 == Rounds; len(Rounds) == Rounds.
func Resolve(c1, c2 *fighter.Combatant, st *style.Style, src dice.Source) *BoutResult {
	b := newBoutState(c1, c2, EffectiveBase(c1, st), EffectiveBase(c2, st))
	rounds, cards := b.simulate(src)
	winner, tieBreak := decideWinner(cards, b.stamina, b.base)

	return &BoutResult{
		Style:         st.Name,
		Combatants:    b.combatants,
		WinnerSide:    winner,
		Winner:        b.combatants[winner.index()],
		Loser:         b.combatants[winner.Other().index()],
		Cards:         cards,
		Rounds:        rounds,
		EffectiveBase: b.base,
		FinalStamina:  b.stamina,
		TieBreak:      tieBreak,
	}
}

// ResolveFight looks up styleName, resolves the bout, and applies post-bout
// injury effects to both combatants under policy.
//
// Postcondition: On a lookup failure returns an error matching
// style.ErrUnknownStyle; no draw is taken and neither combatant is touched.
func ResolveFight(c1, c2 *fighter.Combatant, styleName string, styles style.Lookup, src dice.Source, policy injury.Policy) (*BoutResult, error) {
	st, err := styles.Lookup(styleName)
	if err != nil {
		return nil, err
	}
	res := Resolve(c1, c2, st, src)
	res.Effects = ApplyAftermath(res.Winner, res.Loser, src, policy)
	return res, nil
}
