package combat

import (
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
)

// RelationshipReader reads the relationship value one combatant holds toward
// another, in [0, 100].
type RelationshipReader interface {
	Relationship(from, to string) int
}

// challengePenalty scales an injured opponent's willingness to fight.
var challengePenalty = map[injury.Severity]float64{
	injury.Low:    0.9,
	injury.Medium: 0.7,
	injury.Severe: 0.5,
}

// ChallengeChance returns the probability that opponent accepts a fight
// proposed by proposer: (craziness + dominance + relationship) / 300, scaled
// by the opponent's injury penalty when injured.
func ChallengeChance(opponent, proposer *fighter.Combatant, rel RelationshipReader) float64 {
	base := float64(opponent.TemperamentValue(fighter.Craziness)+
		opponent.TemperamentValue(fighter.Dominance)+
		rel.Relationship(opponent.Name, proposer.Name)) / 300
	if opponent.Injured() {
		if p, ok := challengePenalty[opponent.Injury.Severity]; ok {
			base *= p
		}
	}
	return base
}

// AcceptsChallenge draws once from src against ChallengeChance.
func AcceptsChallenge(opponent, proposer *fighter.Combatant, rel RelationshipReader, src dice.Source) bool {
	return src.Float64() < ChallengeChance(opponent, proposer, rel)
}
