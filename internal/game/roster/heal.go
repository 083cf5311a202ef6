package roster

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// AdvanceDay heals every combatant on the roster by one day and persists the
// injuries it ticked.
//
// Postcondition: Every injury has one fewer day remaining; injuries that reach
// zero are removed and reported as KindInjuryHealed events in name order. On
// an ErrPersist error no injury has changed and no event is published.
func (r *Roster) AdvanceDay(ctx context.Context) ([]event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.healLocked(ctx, r.namesLocked())
}

// HealGroups heals the combatants named across groups by one day. A name that
// appears in several groups is healed once.
//
// Postcondition: Returns an error matching ErrUnknownCombatant, with no
// combatant healed, if any name is not on the roster.
func (r *Roster) HealGroups(ctx context.Context, groups ...[]string) ([]event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	var names []string
	for _, g := range groups {
		for _, name := range g {
			if _, ok := seen[name]; ok {
				continue
			}
			if _, err := r.lookup(name); err != nil {
				return nil, err
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return r.healLocked(ctx, names)
}

func (r *Roster) healLocked(ctx context.Context, names []string) ([]event.Event, error) {
	var injured []string
	for _, name := range names {
		if r.combatants[name].Injury != nil {
			injured = append(injured, name)
		}
	}
	snap := r.snapshotLocked(injured)

	var events []event.Event
	ticked := make([]*fighter.Combatant, 0, len(injured))
	for _, name := range injured {
		c := r.combatants[name]
		if e, ok := healOne(c); ok {
			events = append(events, e)
		}
		ticked = append(ticked, c.Clone())
	}
	if len(ticked) > 0 {
		if err := r.persist.SaveInjuries(ctx, ticked); err != nil {
			r.restoreLocked(snap)
			r.logger.Error("day advance rolled back", zap.Int("injured", len(ticked)), zap.Error(err))
			return nil, persistError(err)
		}
	}
	for _, e := range events {
		r.logger.Info("injury healed",
			zap.String("combatant", e.Subject),
			zap.Stringer("severity", e.From),
		)
	}
	r.logger.Debug("day advanced",
		zap.Int("injured", len(ticked)),
		zap.Int("healed", len(events)),
	)
	event.PublishAll(r.sink, events)
	return events, nil
}

func healOne(c *fighter.Combatant) (event.Event, bool) {
	healed, sev := c.HealDay()
	if !healed {
		return event.Event{}, false
	}
	return event.Event{
		Kind:    event.KindInjuryHealed,
		Subject: c.Name,
		From:    sev,
	}, true
}
