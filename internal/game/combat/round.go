package combat

import (
	"math"

	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// Fixed bout parameters. Callers cannot configure these.
const (
	Rounds = 5
	// BaseRandom is the amplitude of per-round performance noise.
	BaseRandom = 8.0
	// MomentumStep scales the clamped margin into a momentum swing.
	MomentumStep = 0.6
	// MomentumCap bounds |momentum|.
	MomentumCap = 2.0
	// StaminaDrainBase is the per-round stamina cost before variance.
	StaminaDrainBase = 9

	minSwing           = 0.2
	swingDivisor       = 8.0
	drainSpread        = 5 // variance drawn from [0, drainSpread]
	winnerDrainRelief  = 2
	staminaStart       = 60
	defaultStaminaAttr = 40
	staminaMax         = 100
	staminaMultFloor   = 0.6

	bigSwingMargin   = 6.0
	momentumTagRatio = 0.7
	fatigueThreshold = 35
	commentaryChance = 0.5
)

// InitialStamina returns a combatant's stamina at bout start:
// min(100, 60 + stamina attribute), with an absent attribute read as 40.
func InitialStamina(c *fighter.Combatant) int {
	return min(staminaMax, staminaStart+c.AttributeOr(fighter.Stamina, defaultStaminaAttr))
}

// StaminaMultiplier interpolates linearly from 0.6 at stamina 0 to 1.0 at
// stamina 100. Input outside [0, 100] is clamped.
func StaminaMultiplier(stamina int) float64 {
	s := min(staminaMax, max(0, stamina))
	return staminaMultFloor + (1-staminaMultFloor)*float64(s)/staminaMax
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// boutState is the hidden per-bout state evolved round by round.
type boutState struct {
	combatants [2]*fighter.Combatant
	base       [2]float64
	stamina    [2]int
	momentum   float64
}

func newBoutState(c1, c2 *fighter.Combatant, base1, base2 float64) *boutState {
	return &boutState{
		combatants: [2]*fighter.Combatant{c1, c2},
		base:       [2]float64{base1, base2},
		stamina:    [2]int{InitialStamina(c1), InitialStamina(c2)},
	}
}

// playRound simulates round idx and returns its record.
//
// Draw order per round: side1 noise, side2 noise, side1 drain, side2 drain,
// then one draw for each probabilistic commentary tag whose condition holds.
func (b *boutState) playRound(idx int, src dice.Source) RoundRecord {
	var perf [2]float64
	perf[0] = b.base[0]*StaminaMultiplier(b.stamina[0])/100 + b.momentum + dice.Uniform(src, 0, BaseRandom)
	perf[1] = b.base[1]*StaminaMultiplier(b.stamina[1])/100 - b.momentum + dice.Uniform(src, 0, BaseRandom)

	winner := Side1
	if perf[1] > perf[0] {
		winner = Side2
	}
	margin := math.Abs(perf[0] - perf[1])

	swing := clamp(margin/swingDivisor, minSwing, MomentumCap) * MomentumStep
	if winner == Side1 {
		b.momentum += swing
	} else {
		b.momentum -= swing
	}
	b.momentum = clamp(b.momentum, -MomentumCap, MomentumCap)

	for i := range b.stamina {
		drain := StaminaDrainBase + dice.IntRange(src, 0, drainSpread)
		if i == winner.index() {
			drain -= winnerDrainRelief
		}
		b.stamina[i] = max(0, b.stamina[i]-drain)
	}

	return RoundRecord{
		Index:      idx,
		Winner:     b.combatants[winner.index()].Name,
		WinnerSide: winner,
		Margin:     margin,
		Perf:       perf,
		Stamina:    b.stamina,
		Momentum:   b.momentum,
		Tags:       b.tags(idx, winner, margin, src),
	}
}

// tags derives the round's commentary triggers from post-round state.
func (b *boutState) tags(idx int, winner Side, margin float64, src dice.Source) []event.RoundTag {
	var tags []event.RoundTag
	if idx == 1 {
		tags = append(tags, event.RoundTag{Tag: event.TagOpener})
	}
	if margin > bigSwingMargin {
		tags = append(tags, event.RoundTag{Tag: event.TagBigSwing, Subject: b.combatants[winner.index()].Name})
	}
	if math.Abs(b.momentum) > momentumTagRatio*MomentumCap && dice.Chance(src, commentaryChance) {
		favored := b.combatants[0]
		if b.momentum < 0 {
			favored = b.combatants[1]
		}
		tags = append(tags, event.RoundTag{Tag: event.TagMomentum, Subject: favored.Name})
	}
	if min(b.stamina[0], b.stamina[1]) < fatigueThreshold && dice.Chance(src, commentaryChance) {
		tired := b.combatants[0]
		if b.stamina[1] < b.stamina[0] {
			tired = b.combatants[1]
		}
		tags = append(tags, event.RoundTag{Tag: event.TagFatigue, Subject: tired.Name})
	}
	return tags
}

// simulate runs all rounds and returns their records and the card tally.
func (b *boutState) simulate(src dice.Source) ([]RoundRecord, Cards) {
	records := make([]RoundRecord, 0, Rounds)
	var cards Cards
	for i := 1; i <= Rounds; i++ {
		r := b.playRound(i, src)
		if r.WinnerSide == Side1 {
			cards.Side1++
		} else {
			cards.Side2++
		}
		records = append(records, r)
	}
	return records, cards
}
