package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/roster"
)

// Store groups the repositories the bout service writes through. It is the
// roster's Persister.
type Store struct {
	Combatants *CombatantRepository
	Bouts      *BoutRepository
}

// NewStore creates a Store over db.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		Combatants: NewCombatantRepository(db),
		Bouts:      NewBoutRepository(db),
	}
}

var _ roster.Persister = (*Store)(nil)

// SaveCombatant stores a newly enrolled combatant.
func (s *Store) SaveCombatant(ctx context.Context, c *fighter.Combatant) error {
	return s.Combatants.Upsert(ctx, c)
}

// Record stores a bout and its post-bout injuries.
func (s *Store) Record(ctx context.Context, res *combat.BoutResult) error {
	return s.Bouts.Record(ctx, res)
}

// SaveInjuries stores the injury state of cs.
func (s *Store) SaveInjuries(ctx context.Context, cs []*fighter.Combatant) error {
	return s.Combatants.SaveInjuries(ctx, cs)
}

// SaveRelationship stores one relationship value.
func (s *Store) SaveRelationship(ctx context.Context, rel roster.RelationshipSeed) error {
	return s.Combatants.SaveRelationship(ctx, rel)
}

// Restore loads the stored roster and head-to-head history into r.
//
// Precondition: r must be empty.
func (s *Store) Restore(ctx context.Context, r *roster.Roster) error {
	seed, err := s.Combatants.LoadSeed(ctx)
	if err != nil {
		return err
	}
	if err := r.Load(seed); err != nil {
		return err
	}
	tallies, err := s.Bouts.Tallies(ctx)
	if err != nil {
		return err
	}
	RestoreHeadToHead(r, tallies)
	return nil
}
