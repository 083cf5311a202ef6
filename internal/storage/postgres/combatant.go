package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/roster"
)

// CombatantRepository persists combatants, their injuries and relationships.
type CombatantRepository struct {
	db *pgxpool.Pool
}

// NewCombatantRepository creates a CombatantRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCombatantRepository(db *pgxpool.Pool) *CombatantRepository {
	return &CombatantRepository{db: db}
}

// injuryColumns splits an injury into its nullable column values.
func injuryColumns(s *injury.State) (sev *string, days *int) {
	if !s.Active() {
		return nil, nil
	}
	name := s.Severity.String()
	d := s.DaysRemaining
	return &name, &d
}

func injuryFromColumns(sev *string, days *int) (*injury.State, error) {
	if sev == nil || days == nil {
		return nil, nil
	}
	parsed, err := injury.ParseSeverity(*sev)
	if err != nil {
		return nil, err
	}
	return &injury.State{Severity: parsed, DaysRemaining: *days}, nil
}

// Upsert inserts c or replaces the stored attributes, temperament and injury.
//
// Precondition: c.Name must be non-empty.
func (r *CombatantRepository) Upsert(ctx context.Context, c *fighter.Combatant) error {
	return upsertCombatant(ctx, r.db, c, true)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// upsertCombatant writes c. When replace is false an existing row is left as is.
func upsertCombatant(ctx context.Context, db execer, c *fighter.Combatant, replace bool) error {
	sev, days := injuryColumns(c.Injury)
	attrs, temper := c.Attributes, c.Temperament
	if attrs == nil {
		attrs = map[string]int{}
	}
	if temper == nil {
		temper = map[string]int{}
	}
	conflict := `DO NOTHING`
	if replace {
		conflict = `DO UPDATE SET
			attributes      = EXCLUDED.attributes,
			temperament     = EXCLUDED.temperament,
			injury_severity = EXCLUDED.injury_severity,
			injury_days     = EXCLUDED.injury_days,
			updated_at      = NOW()`
	}
	_, err := db.Exec(ctx, `
		INSERT INTO combatants (name, attributes, temperament, injury_severity, injury_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) `+conflict,
		c.Name, attrs, temper, sev, days,
	)
	if err != nil {
		return fmt.Errorf("upserting combatant %q: %w", c.Name, err)
	}
	return nil
}

func scanCombatant(row pgx.Row) (*fighter.Combatant, error) {
	var (
		c    fighter.Combatant
		sev  *string
		days *int
	)
	if err := row.Scan(&c.Name, &c.Attributes, &c.Temperament, &sev, &days); err != nil {
		return nil, err
	}
	inj, err := injuryFromColumns(sev, days)
	if err != nil {
		return nil, fmt.Errorf("combatant %q: %w", c.Name, err)
	}
	c.Injury = inj
	return &c, nil
}

// Get returns the named combatant.
//
// Postcondition: Returns ErrCombatantNotFound if no row matches.
func (r *CombatantRepository) Get(ctx context.Context, name string) (*fighter.Combatant, error) {
	c, err := scanCombatant(r.db.QueryRow(ctx, `
		SELECT name, attributes, temperament, injury_severity, injury_days
		FROM combatants WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCombatantNotFound
		}
		return nil, fmt.Errorf("getting combatant %q: %w", name, err)
	}
	return c, nil
}

// List returns every combatant ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CombatantRepository) List(ctx context.Context) ([]*fighter.Combatant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, attributes, temperament, injury_severity, injury_days
		FROM combatants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing combatants: %w", err)
	}
	defer rows.Close()

	var out []*fighter.Combatant
	for rows.Next() {
		c, err := scanCombatant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning combatant: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combatants: %w", err)
	}
	return out, nil
}

// SaveInjury stores the named combatant's injury; nil clears it.
//
// Postcondition: Returns ErrCombatantNotFound if no row matches.
func (r *CombatantRepository) SaveInjury(ctx context.Context, name string, s *injury.State) error {
	return saveInjury(ctx, r.db, name, s)
}

// SaveInjuries stores the injuries of every combatant in cs in one transaction.
func (r *CombatantRepository) SaveInjuries(ctx context.Context, cs []*fighter.Combatant) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, c := range cs {
			if err := saveInjury(ctx, tx, c.Name, c.Injury); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveInjury(ctx context.Context, db execer, name string, s *injury.State) error {
	sev, days := injuryColumns(s)
	tag, err := db.Exec(ctx, `
		UPDATE combatants
		SET injury_severity = $2, injury_days = $3, updated_at = NOW()
		WHERE name = $1`,
		name, sev, days,
	)
	if err != nil {
		return fmt.Errorf("saving injury for %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saving injury for %q: %w", name, ErrCombatantNotFound)
	}
	return nil
}

// SaveRelationship stores how from regards to.
//
// Postcondition: Returns ErrCombatantNotFound if either combatant is missing.
func (r *CombatantRepository) SaveRelationship(ctx context.Context, rel roster.RelationshipSeed) error {
	return saveRelationship(ctx, r.db, rel)
}

func saveRelationship(ctx context.Context, db execer, rel roster.RelationshipSeed) error {
	_, err := db.Exec(ctx, `
		INSERT INTO relationships (from_name, to_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_name, to_name) DO UPDATE SET value = EXCLUDED.value`,
		rel.From, rel.To, rel.Value,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("relationship %s -> %s: %w", rel.From, rel.To, ErrCombatantNotFound)
		}
		return fmt.Errorf("saving relationship %s -> %s: %w", rel.From, rel.To, err)
	}
	return nil
}

// ListRelationships returns every stored relationship ordered by from, to.
func (r *CombatantRepository) ListRelationships(ctx context.Context) ([]roster.RelationshipSeed, error) {
	rows, err := r.db.Query(ctx, `
		SELECT from_name, to_name, value FROM relationships ORDER BY from_name, to_name`)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	rels, err := pgx.CollectRows(rows, pgx.RowToStructByPos[roster.RelationshipSeed])
	if err != nil {
		return nil, fmt.Errorf("scanning relationships: %w", err)
	}
	return rels, nil
}

// LoadSeed returns the stored roster as a seed suitable for roster.Load.
func (r *CombatantRepository) LoadSeed(ctx context.Context) (*roster.Seed, error) {
	cs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := r.ListRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return &roster.Seed{Combatants: cs, Relationships: rels}, nil
}

// StoreSeed inserts every combatant and relationship in seed in one
// transaction. Combatants already stored keep their current state.
func (r *CombatantRepository) StoreSeed(ctx context.Context, seed *roster.Seed) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, c := range seed.Combatants {
			if err := upsertCombatant(ctx, tx, c, false); err != nil {
				return err
			}
		}
		for _, rel := range seed.Relationships {
			if err := saveRelationship(ctx, tx, rel); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing roster seed: %w", err)
	}
	return nil
}
