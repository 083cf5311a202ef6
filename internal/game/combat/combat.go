// Package combat resolves bouts between two combatants: a fixed number of
// rounds with evolving stamina and momentum, a round-card tally with a
// deterministic tie-break, and post-bout injury effects.
package combat

import (
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// Side identifies a combatant's position in a bout. Side1 is the first
// combatant passed to the resolver and wins exact ties.
type Side int

const (
	Side1 Side = iota + 1
	Side2
)

// String returns "side1" or "side2".
func (s Side) String() string {
	switch s {
	case Side1:
		return "side1"
	case Side2:
		return "side2"
	default:
		return "unknown"
	}
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Side1 {
		return Side2
	}
	return Side1
}

func (s Side) index() int { return int(s) - 1 }

// Cards is the round-win tally per side.
//
// Invariant: Side1 + Side2 == Rounds after a bout.
type Cards struct {
	Side1 int
	Side2 int
}

// For returns the card count of side s.
func (c Cards) For(s Side) int {
	if s == Side1 {
		return c.Side1
	}
	return c.Side2
}

// RoundRecord is the structured outcome of one round.
type RoundRecord struct {
	// Index is 1-based.
	Index      int
	Winner     string
	WinnerSide Side
	// Margin is |perf1 - perf2|.
	Margin float64
	// Perf holds each side's performance for the round.
	Perf [2]float64
	// Stamina holds each side's stamina after the round's drain.
	Stamina [2]int
	// Momentum is the shared momentum after the round; positive favors Side1.
	Momentum float64
	Tags     []event.RoundTag
}

// Has reports whether the round carries tag.
func (r RoundRecord) Has(tag event.Tag) bool {
	for _, t := range r.Tags {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// TagSubject returns the subject of tag and whether the round carries it.
func (r RoundRecord) TagSubject(tag event.Tag) (string, bool) {
	for _, t := range r.Tags {
		if t.Tag == tag {
			return t.Subject, true
		}
	}
	return "", false
}

// BoutResult is returned to the caller after a bout. It is not persisted by
// the engine.
type BoutResult struct {
	// ID is assigned by Engine; it is empty for results built directly by
	// Resolve or ResolveFight.
	ID         string
	Style      string
	Combatants [2]*fighter.Combatant
	Winner     *fighter.Combatant
	Loser      *fighter.Combatant
	WinnerSide Side
	Cards      Cards
	Rounds     []RoundRecord
	// EffectiveBase is each side's base skill after the injury multiplier.
	EffectiveBase [2]float64
	// FinalStamina is each side's stamina after the last round.
	FinalStamina [2]int
	// TieBreak is true when the cards were level and the winner was decided
	// by remaining stamina plus skill.
	TieBreak bool
	// Effects holds the post-bout injury events, in the order applied.
	Effects []event.Event
}

// Events returns the bout's full structured event stream: one KindRound event
// per round, the KindBoutResolved event, then the post-bout effects.
func (r *BoutResult) Events() []event.Event {
	out := make([]event.Event, 0, len(r.Rounds)+1+len(r.Effects))
	for _, rr := range r.Rounds {
		out = append(out, event.Event{
			Kind:     event.KindRound,
			BoutID:   r.ID,
			Round:    rr.Index,
			Tags:     rr.Tags,
			Subject:  rr.Winner,
			Opponent: r.Combatants[rr.WinnerSide.Other().index()].Name,
			Style:    r.Style,
			Margin:   rr.Margin,
		})
	}
	out = append(out, event.Event{
		Kind:     event.KindBoutResolved,
		BoutID:   r.ID,
		Subject:  r.Winner.Name,
		Opponent: r.Loser.Name,
		Style:    r.Style,
		Cards:    [2]int{r.Cards.For(r.WinnerSide), r.Cards.For(r.WinnerSide.Other())},
	})
	for _, e := range r.Effects {
		e.BoutID = r.ID
		out = append(out, e)
	}
	return out
}
