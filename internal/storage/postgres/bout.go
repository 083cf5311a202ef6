package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/roster"
)

// BoutRow is one stored bout.
type BoutRow struct {
	ID          string
	Style       string
	Side1       string
	Side2       string
	Winner      string
	Loser       string
	CardsWinner int
	CardsLoser  int
	TieBreak    bool
	FoughtAt    time.Time
}

// PairTally counts the bouts winner has won against loser.
type PairTally struct {
	Winner string
	Loser  string
	Wins   int
}

// BoutRepository persists bout history and the tallies head-to-head records
// are rebuilt from.
type BoutRepository struct {
	db *pgxpool.Pool
}

// NewBoutRepository creates a BoutRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBoutRepository(db *pgxpool.Pool) *BoutRepository {
	return &BoutRepository{db: db}
}

// Record stores res and, in the same transaction, the post-bout injury state
// of both combatants.
//
// Precondition: res.ID must be a UUID; both combatants must be stored.
// Postcondition: Returns ErrCombatantNotFound if either combatant is missing.
func (r *BoutRepository) Record(ctx context.Context, res *combat.BoutResult) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO bouts (id, style, side1, side2, winner, loser, cards_winner, cards_loser, tie_break)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			res.ID, res.Style,
			res.Combatants[0].Name, res.Combatants[1].Name,
			res.Winner.Name, res.Loser.Name,
			res.Cards.For(res.WinnerSide), res.Cards.For(res.WinnerSide.Other()),
			res.TieBreak,
		)
		if err != nil {
			if isForeignKeyError(err) {
				return ErrCombatantNotFound
			}
			return err
		}
		for _, c := range res.Combatants {
			if err := saveInjury(ctx, tx, c.Name, c.Injury); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording bout %s: %w", res.ID, err)
	}
	return nil
}

// Get returns the stored bout with the given ID.
//
// Postcondition: Returns ErrBoutNotFound if no row matches.
func (r *BoutRepository) Get(ctx context.Context, id string) (*BoutRow, error) {
	var b BoutRow
	err := r.db.QueryRow(ctx, `
		SELECT id::text, style, side1, side2, winner, loser, cards_winner, cards_loser, tie_break, fought_at
		FROM bouts WHERE id = $1`, id,
	).Scan(&b.ID, &b.Style, &b.Side1, &b.Side2, &b.Winner, &b.Loser,
		&b.CardsWinner, &b.CardsLoser, &b.TieBreak, &b.FoughtAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoutNotFound
		}
		return nil, fmt.Errorf("getting bout %s: %w", id, err)
	}
	return &b, nil
}

// ListFor returns the most recent bouts involving name, newest first.
//
// Precondition: limit > 0.
func (r *BoutRepository) ListFor(ctx context.Context, name string, limit int) ([]BoutRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, style, side1, side2, winner, loser, cards_winner, cards_loser, tie_break, fought_at
		FROM bouts
		WHERE side1 = $1 OR side2 = $1
		ORDER BY fought_at DESC, id
		LIMIT $2`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("listing bouts for %q: %w", name, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[BoutRow])
	if err != nil {
		return nil, fmt.Errorf("scanning bouts for %q: %w", name, err)
	}
	return out, nil
}

// Tallies returns win counts for every ordered (winner, loser) pair.
func (r *BoutRepository) Tallies(ctx context.Context) ([]PairTally, error) {
	rows, err := r.db.Query(ctx, `
		SELECT winner, loser, COUNT(*)::int
		FROM bouts GROUP BY winner, loser ORDER BY winner, loser`)
	if err != nil {
		return nil, fmt.Errorf("tallying bouts: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[PairTally])
	if err != nil {
		return nil, fmt.Errorf("scanning tallies: %w", err)
	}
	return out, nil
}

// RestoreHeadToHead replays tallies into r's head-to-head records.
func RestoreHeadToHead(r *roster.Roster, tallies []PairTally) {
	records := make(map[[2]string]roster.Record)
	for _, t := range tallies {
		w := records[[2]string{t.Winner, t.Loser}]
		w.Wins += t.Wins
		records[[2]string{t.Winner, t.Loser}] = w
		l := records[[2]string{t.Loser, t.Winner}]
		l.Losses += t.Wins
		records[[2]string{t.Loser, t.Winner}] = l
	}
	for k, rec := range records {
		r.SetHeadToHead(k[0], k[1], rec)
	}
}
