package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// ErrPersist is returned when a change could not be written to the
// Persister. The roster is rolled back to its state before the change.
var ErrPersist = errors.New("persisting roster change")

// Persister stores roster changes. The roster calls it while holding its
// lock, so writes reach the store in the order the changes were made.
type Persister interface {
	SaveCombatant(ctx context.Context, c *fighter.Combatant) error
	// Record stores a bout and the post-bout injury state of both sides.
	Record(ctx context.Context, res *combat.BoutResult) error
	SaveInjuries(ctx context.Context, cs []*fighter.Combatant) error
	SaveRelationship(ctx context.Context, rel RelationshipSeed) error
}

type nopPersister struct{}

func (nopPersister) SaveCombatant(context.Context, *fighter.Combatant) error  { return nil }
func (nopPersister) Record(context.Context, *combat.BoutResult) error         { return nil }
func (nopPersister) SaveInjuries(context.Context, []*fighter.Combatant) error { return nil }
func (nopPersister) SaveRelationship(context.Context, RelationshipSeed) error { return nil }

// WithPersister writes every enrollment, bout, heal and relationship change
// to p before the roster releases its lock.
func WithPersister(p Persister) Option {
	return func(r *Roster) { r.persist = p }
}

func persistError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersist, err)
}

// snapshot holds the state a change may need to undo.
type snapshot struct {
	injuries map[string]*fighter.Combatant
	records  map[pair]Record
}

func (r *Roster) snapshotLocked(names []string, pairs ...pair) snapshot {
	s := snapshot{injuries: make(map[string]*fighter.Combatant, len(names)), records: make(map[pair]Record, len(pairs))}
	for _, name := range names {
		s.injuries[name] = &fighter.Combatant{Name: name, Injury: r.combatants[name].Injury.Clone()}
	}
	for _, p := range pairs {
		s.records[p] = r.records[p]
	}
	return s
}

func (r *Roster) restoreLocked(s snapshot) {
	for name, c := range s.injuries {
		r.combatants[name].Injury = c.Injury
	}
	for p, rec := range s.records {
		if rec == (Record{}) {
			delete(r.records, p)
			continue
		}
		r.records[p] = rec
	}
}
