// Package roster owns the full set of combatants for a session: their
// attributes and injuries, pairwise relationships, head-to-head records, and
// the daily healing tick.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// ErrUnknownCombatant is returned when a name is not on the roster.
var ErrUnknownCombatant = errors.New("unknown combatant")

// ErrDuplicateCombatant is returned when adding a name already on the roster.
var ErrDuplicateCombatant = errors.New("duplicate combatant")

// Relationship bounds.
const (
	RelationshipMin = 0
	RelationshipMax = 100
)

type pair [2]string

// Record is one combatant's head-to-head tally against another.
type Record struct {
	Wins   int
	Losses int
}

// Roster owns combatants and serializes every mutation of their state: bouts
// and heal ticks never interleave.
// All methods are safe for concurrent use.
type Roster struct {
	engine  *combat.Engine
	logger  *zap.Logger
	sink    event.Sink
	persist Persister

	mu            sync.Mutex
	combatants    map[string]*fighter.Combatant
	relationships map[pair]int
	records       map[pair]Record
}

// Option configures a Roster.
type Option func(*Roster)

// WithSink publishes healed events to s.
func WithSink(s event.Sink) Option {
	return func(r *Roster) { r.sink = s }
}

// New creates an empty Roster that runs bouts through engine.
//
// Precondition: engine and logger must be non-nil.
func New(engine *combat.Engine, logger *zap.Logger, opts ...Option) *Roster {
	r := &Roster{
		engine:        engine,
		logger:        logger,
		sink:          event.Discard,
		persist:       nopPersister{},
		combatants:    make(map[string]*fighter.Combatant),
		relationships: make(map[pair]int),
		records:       make(map[pair]Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add places c on the roster without persisting it. The roster takes
// ownership of c.
//
// Precondition: c must be non-nil.
// Postcondition: Returns an error matching ErrDuplicateCombatant if the name
// is taken, or a validation error for an empty name or a malformed injury.
func (r *Roster) Add(c *fighter.Combatant) error {
	if err := validate(c); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(c)
}

// Enroll adds c to the roster and persists it. The roster takes ownership
// of c.
//
// Postcondition: On an ErrPersist error c is not on the roster.
func (r *Roster) Enroll(ctx context.Context, c *fighter.Combatant) error {
	if err := validate(c); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.addLocked(c); err != nil {
		return err
	}
	if err := r.persist.SaveCombatant(ctx, c.Clone()); err != nil {
		delete(r.combatants, c.Name)
		return persistError(err)
	}
	r.logger.Info("combatant enrolled", zap.String("combatant", c.Name))
	return nil
}

func validate(c *fighter.Combatant) error {
	if c.Name == "" {
		return errors.New("roster: combatant name must not be empty")
	}
	if c.Injury != nil {
		if !c.Injury.Severity.Valid() {
			return fmt.Errorf("roster: combatant %q: invalid injury severity", c.Name)
		}
		if c.Injury.DaysRemaining <= 0 {
			return fmt.Errorf("roster: combatant %q: injury days_remaining must be > 0", c.Name)
		}
	}
	return nil
}

func (r *Roster) addLocked(c *fighter.Combatant) error {
	if _, ok := r.combatants[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCombatant, c.Name)
	}
	r.combatants[c.Name] = c
	return nil
}

// Get returns a copy of the named combatant.
func (r *Roster) Get(name string) (*fighter.Combatant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// All returns copies of every combatant, sorted by name.
func (r *Roster) All() []*fighter.Combatant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*fighter.Combatant, 0, len(r.combatants))
	for _, name := range r.namesLocked() {
		out = append(out, r.combatants[name].Clone())
	}
	return out
}

// Len returns the number of combatants on the roster.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.combatants)
}

// Injured returns the names of combatants currently sitting out injured,
// sorted.
func (r *Roster) Injured() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, name := range r.namesLocked() {
		if r.combatants[name].Injured() {
			out = append(out, name)
		}
	}
	return out
}

// AdjustAttribute applies a clamped delta to one combatant's attribute.
//
// Postcondition: Returns the new value, or an error if the combatant or the
// attribute is unknown.
func (r *Roster) AdjustAttribute(name, attr string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	v, ok := c.AdjustAttribute(attr, delta)
	if !ok {
		return 0, fmt.Errorf("roster: combatant %q has no attribute %q", name, attr)
	}
	return v, nil
}

// Relationship returns how from regards to, in [RelationshipMin,
// RelationshipMax]. Unset pairs read as 0.
func (r *Roster) Relationship(from, to string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relationships[pair{from, to}]
}

// SetRelationship sets how from regards to, clamped to the relationship
// bounds, and persists it.
//
// Postcondition: On an ErrPersist error the previous value is kept.
func (r *Roster) SetRelationship(ctx context.Context, from, to string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pair{from, to}
	prev, had := r.relationships[key]
	if err := r.setRelationshipLocked(from, to, value); err != nil {
		return err
	}
	rel := RelationshipSeed{From: from, To: to, Value: r.relationships[key]}
	if err := r.persist.SaveRelationship(ctx, rel); err != nil {
		if had {
			r.relationships[key] = prev
		} else {
			delete(r.relationships, key)
		}
		return persistError(err)
	}
	return nil
}

func (r *Roster) setRelationshipLocked(from, to string, value int) error {
	if _, err := r.lookup(from); err != nil {
		return err
	}
	if _, err := r.lookup(to); err != nil {
		return err
	}
	r.relationships[pair{from, to}] = min(RelationshipMax, max(RelationshipMin, value))
	return nil
}

// RecordResult credits winner with a win over loser and loser with the loss.
func (r *Roster) RecordResult(winner, loser string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordLocked(winner, loser)
}

func (r *Roster) recordLocked(winner, loser string) error {
	if _, err := r.lookup(winner); err != nil {
		return err
	}
	if _, err := r.lookup(loser); err != nil {
		return err
	}
	w := r.records[pair{winner, loser}]
	w.Wins++
	r.records[pair{winner, loser}] = w
	l := r.records[pair{loser, winner}]
	l.Losses++
	r.records[pair{loser, winner}] = l
	return nil
}

// HeadToHead returns a's record against b.
func (r *Roster) HeadToHead(a, b string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[pair{a, b}]
}

// SetHeadToHead overwrites a's record against b. Used when restoring history.
func (r *Roster) SetHeadToHead(a, b string, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[pair{a, b}] = rec
}

// Bout runs a full bout between the named combatants under styleName,
// records the head-to-head result, and persists both before returning.
//
// Postcondition: The result holds copies of the combatants, safe to read after
// the roster moves on. On error neither combatant's state has changed. Errors
// match ErrUnknownCombatant, style.ErrUnknownStyle, combat.ErrSameCombatant,
// combat.ErrCombatantBusy, or ErrPersist. Events the engine published for a
// bout rolled back by ErrPersist are not withdrawn.
func (r *Roster) Bout(ctx context.Context, side1, side2, styleName string) (*combat.BoutResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c1, c2, err := r.pairLocked(side1, side2)
	if err != nil {
		return nil, err
	}
	snap := r.snapshotLocked([]string{side1, side2}, pair{side1, side2}, pair{side2, side1})
	res, err := r.engine.Fight(c1, c2, styleName)
	if err != nil {
		return nil, fmt.Errorf("bout %s vs %s: %w", side1, side2, err)
	}
	if err := r.recordLocked(res.Winner.Name, res.Loser.Name); err != nil {
		return nil, err
	}
	out := *res
	out.Combatants = [2]*fighter.Combatant{c1.Clone(), c2.Clone()}
	out.Winner, out.Loser = out.Combatants[0], out.Combatants[1]
	if res.Winner != c1 {
		out.Winner, out.Loser = out.Loser, out.Winner
	}
	if err := r.persist.Record(ctx, &out); err != nil {
		r.restoreLocked(snap)
		r.logger.Error("bout rolled back", zap.String("bout_id", out.ID), zap.Error(err))
		return nil, persistError(err)
	}
	return &out, nil
}

// Simple runs the single-exchange variant between the named combatants,
// records the head-to-head result, and persists both sides' injuries.
func (r *Roster) Simple(ctx context.Context, side1, side2, styleName string) (*combat.SimpleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c1, c2, err := r.pairLocked(side1, side2)
	if err != nil {
		return nil, err
	}
	snap := r.snapshotLocked([]string{side1, side2}, pair{side1, side2}, pair{side2, side1})
	res, err := r.engine.Simple(c1, c2, styleName)
	if err != nil {
		return nil, fmt.Errorf("simple fight %s vs %s: %w", side1, side2, err)
	}
	if err := r.recordLocked(res.Winner.Name, res.Loser.Name); err != nil {
		return nil, err
	}
	out := *res
	out.Winner, out.Loser = res.Winner.Clone(), res.Loser.Clone()
	if err := r.persist.SaveInjuries(ctx, []*fighter.Combatant{out.Winner, out.Loser}); err != nil {
		r.restoreLocked(snap)
		r.logger.Error("simple fight rolled back", zap.Error(err))
		return nil, persistError(err)
	}
	return &out, nil
}

func (r *Roster) pairLocked(side1, side2 string) (*fighter.Combatant, *fighter.Combatant, error) {
	c1, err := r.lookup(side1)
	if err != nil {
		return nil, nil, err
	}
	c2, err := r.lookup(side2)
	if err != nil {
		return nil, nil, err
	}
	return c1, c2, nil
}

func (r *Roster) lookup(name string) (*fighter.Combatant, error) {
	c, ok := r.combatants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCombatant, name)
	}
	return c, nil
}

func (r *Roster) namesLocked() []string {
	names := make([]string, 0, len(r.combatants))
	for name := range r.combatants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
