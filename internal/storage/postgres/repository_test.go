package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/roster"
	"github.com/cory-johannsen/bout/internal/game/style"
	"github.com/cory-johannsen/bout/internal/storage/postgres"
	"github.com/cory-johannsen/bout/internal/testutil"
)

func combatant(name string, technique int) *fighter.Combatant {
	return &fighter.Combatant{
		Name:        name,
		Attributes:  map[string]int{fighter.Technique: technique, fighter.Stamina: 50},
		Temperament: map[string]int{fighter.Craziness: 20},
	}
}

func TestCombatantRepository(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	repo := postgres.NewCombatantRepository(pool)
	ctx := context.Background()

	t.Run("upsert and get round trip", func(t *testing.T) {
		testutil.Truncate(t, pool)
		c := combatant("Ava", 70)
		c.Injury = &injury.State{Severity: injury.Medium, DaysRemaining: 3}
		require.NoError(t, repo.Upsert(ctx, c))

		got, err := repo.Get(ctx, "Ava")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		testutil.Truncate(t, pool)
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 70)))
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 40)))

		got, err := repo.Get(ctx, "Ava")
		require.NoError(t, err)
		assert.Equal(t, 40, got.Attribute(fighter.Technique))
	})

	t.Run("get missing", func(t *testing.T) {
		testutil.Truncate(t, pool)
		_, err := repo.Get(ctx, "Nobody")
		assert.ErrorIs(t, err, postgres.ErrCombatantNotFound)
	})

	t.Run("list sorted by name", func(t *testing.T) {
		testutil.Truncate(t, pool)
		require.NoError(t, repo.Upsert(ctx, combatant("Cleo", 50)))
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 50)))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Ava", got[0].Name)
		assert.Equal(t, "Cleo", got[1].Name)
	})

	t.Run("save and clear injury", func(t *testing.T) {
		testutil.Truncate(t, pool)
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 70)))

		require.NoError(t, repo.SaveInjury(ctx, "Ava", injury.New(injury.Severe)))
		got, err := repo.Get(ctx, "Ava")
		require.NoError(t, err)
		require.NotNil(t, got.Injury)
		assert.Equal(t, injury.Severe, got.Injury.Severity)
		assert.Equal(t, 7, got.Injury.DaysRemaining)

		require.NoError(t, repo.SaveInjury(ctx, "Ava", nil))
		got, err = repo.Get(ctx, "Ava")
		require.NoError(t, err)
		assert.Nil(t, got.Injury)
	})

	t.Run("save injury for missing combatant", func(t *testing.T) {
		testutil.Truncate(t, pool)
		err := repo.SaveInjury(ctx, "Nobody", injury.New(injury.Low))
		assert.ErrorIs(t, err, postgres.ErrCombatantNotFound)
	})

	t.Run("save injuries is atomic", func(t *testing.T) {
		testutil.Truncate(t, pool)
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 70)))

		ava := combatant("Ava", 70)
		ava.Injury = injury.New(injury.Low)
		err := repo.SaveInjuries(ctx, []*fighter.Combatant{ava, combatant("Nobody", 1)})
		require.ErrorIs(t, err, postgres.ErrCombatantNotFound)

		got, err := repo.Get(ctx, "Ava")
		require.NoError(t, err)
		assert.Nil(t, got.Injury)
	})

	t.Run("relationships", func(t *testing.T) {
		testutil.Truncate(t, pool)
		require.NoError(t, repo.Upsert(ctx, combatant("Ava", 70)))
		require.NoError(t, repo.Upsert(ctx, combatant("Bea", 70)))

		require.NoError(t, repo.SaveRelationship(ctx, roster.RelationshipSeed{From: "Ava", To: "Bea", Value: 30}))
		require.NoError(t, repo.SaveRelationship(ctx, roster.RelationshipSeed{From: "Ava", To: "Bea", Value: 80}))
		err := repo.SaveRelationship(ctx, roster.RelationshipSeed{From: "Ava", To: "Nobody", Value: 1})
		assert.ErrorIs(t, err, postgres.ErrCombatantNotFound)

		rels, err := repo.ListRelationships(ctx)
		require.NoError(t, err)
		assert.Equal(t, []roster.RelationshipSeed{{From: "Ava", To: "Bea", Value: 80}}, rels)
	})

	t.Run("store seed keeps existing combatants", func(t *testing.T) {
		testutil.Truncate(t, pool)
		stored := combatant("Ava", 70)
		stored.Injury = injury.New(injury.Low)
		require.NoError(t, repo.Upsert(ctx, stored))

		seed := &roster.Seed{
			Combatants:    []*fighter.Combatant{combatant("Ava", 10), combatant("Bea", 60)},
			Relationships: []roster.RelationshipSeed{{From: "Bea", To: "Ava", Value: 55}},
		}
		require.NoError(t, repo.StoreSeed(ctx, seed))

		loaded, err := repo.LoadSeed(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Combatants, 2)
		assert.Equal(t, 70, loaded.Combatants[0].Attribute(fighter.Technique))
		require.NotNil(t, loaded.Combatants[0].Injury)
		assert.Equal(t, 60, loaded.Combatants[1].Attribute(fighter.Technique))
		assert.Equal(t, seed.Relationships, loaded.Relationships)
	})
}

type fixedSrc struct{ f float64 }

func (s fixedSrc) Intn(_ int) int   { return 0 }
func (s fixedSrc) Float64() float64 { return s.f }

func newBoutRoster(t *testing.T, src dice.Source) *roster.Roster {
	t.Helper()
	cat, err := style.NewCatalog(&style.Style{Name: "Technical", Weights: map[string]float64{fighter.Technique: 1}})
	require.NoError(t, err)
	eng := combat.NewEngine(cat, src, zap.NewNop())
	r := roster.New(eng, zap.NewNop())
	require.NoError(t, r.Add(combatant("Ava", 80)))
	require.NoError(t, r.Add(combatant("Bea", 40)))
	return r
}

func TestBoutRepository(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	combatants := postgres.NewCombatantRepository(pool)
	bouts := postgres.NewBoutRepository(pool)
	ctx := context.Background()

	seed := func(t *testing.T) {
		t.Helper()
		testutil.Truncate(t, pool)
		require.NoError(t, combatants.Upsert(ctx, combatant("Ava", 80)))
		require.NoError(t, combatants.Upsert(ctx, combatant("Bea", 40)))
	}

	t.Run("record stores bout", func(t *testing.T) {
		seed(t)
		r := newBoutRoster(t, fixedSrc{f: 0.99})
		res, err := r.Bout(ctx, "Ava", "Bea", "Technical")
		require.NoError(t, err)
		require.NoError(t, bouts.Record(ctx, res))

		row, err := bouts.Get(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "Technical", row.Style)
		assert.Equal(t, "Ava", row.Side1)
		assert.Equal(t, "Bea", row.Side2)
		assert.Equal(t, "Ava", row.Winner)
		assert.Equal(t, "Bea", row.Loser)
		assert.Equal(t, 5, row.CardsWinner)
		assert.Equal(t, 0, row.CardsLoser)
		assert.False(t, row.TieBreak)
	})

	t.Run("record persists post-bout injury", func(t *testing.T) {
		seed(t)
		// f=0 always injures the loser.
		r := newBoutRoster(t, fixedSrc{f: 0})
		res, err := r.Bout(ctx, "Ava", "Bea", "Technical")
		require.NoError(t, err)
		require.NoError(t, bouts.Record(ctx, res))

		stored, err := combatants.Get(ctx, res.Loser.Name)
		require.NoError(t, err)
		assert.Equal(t, res.Loser.Injury, stored.Injury)
	})

	t.Run("record missing combatant", func(t *testing.T) {
		testutil.Truncate(t, pool)
		r := newBoutRoster(t, fixedSrc{f: 0.99})
		res, err := r.Bout(ctx, "Ava", "Bea", "Technical")
		require.NoError(t, err)
		assert.ErrorIs(t, bouts.Record(ctx, res), postgres.ErrCombatantNotFound)
	})

	t.Run("tallies and history", func(t *testing.T) {
		seed(t)
		r := newBoutRoster(t, fixedSrc{f: 0.99})
		for i := 0; i < 3; i++ {
			res, err := r.Bout(ctx, "Ava", "Bea", "Technical")
			require.NoError(t, err)
			require.NoError(t, bouts.Record(ctx, res))
		}

		tallies, err := bouts.Tallies(ctx)
		require.NoError(t, err)
		assert.Equal(t, []postgres.PairTally{{Winner: "Ava", Loser: "Bea", Wins: 3}}, tallies)

		listed, err := bouts.ListFor(ctx, "Bea", 2)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.False(t, listed[0].FoughtAt.Before(listed[1].FoughtAt), "newest first")

		none, err := bouts.ListFor(ctx, "Cleo", 5)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("get missing bout", func(t *testing.T) {
		seed(t)
		_, err := bouts.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, postgres.ErrBoutNotFound)
	})
}

func TestRestoreHeadToHead(t *testing.T) {
	r := newBoutRoster(t, fixedSrc{})
	postgres.RestoreHeadToHead(r, []postgres.PairTally{
		{Winner: "Ava", Loser: "Bea", Wins: 3},
		{Winner: "Bea", Loser: "Ava", Wins: 1},
	})
	assert.Equal(t, roster.Record{Wins: 3, Losses: 1}, r.HeadToHead("Ava", "Bea"))
	assert.Equal(t, roster.Record{Wins: 1, Losses: 3}, r.HeadToHead("Bea", "Ava"))
}

func TestStore_Restore(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Combatants.StoreSeed(ctx, &roster.Seed{
		Combatants:    []*fighter.Combatant{combatant("Ava", 80), combatant("Bea", 40)},
		Relationships: []roster.RelationshipSeed{{From: "Ava", To: "Bea", Value: 65}},
	}))
	live := newBoutRoster(t, fixedSrc{f: 0.99})
	res, err := live.Bout(ctx, "Ava", "Bea", "Technical")
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, res))

	cat, err := style.NewCatalog(&style.Style{Name: "Technical", Weights: map[string]float64{fighter.Technique: 1}})
	require.NoError(t, err)
	restored := roster.New(combat.NewEngine(cat, fixedSrc{}, zap.NewNop()), zap.NewNop())
	require.NoError(t, store.Restore(ctx, restored))

	assert.Equal(t, 2, restored.Len())
	assert.Equal(t, 65, restored.Relationship("Ava", "Bea"))
	assert.Equal(t, roster.Record{Wins: 1}, restored.HeadToHead("Ava", "Bea"))
}

func TestStore_PersistsRosterChanges(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	cat, err := style.NewCatalog(&style.Style{Name: "Technical", Weights: map[string]float64{fighter.Technique: 1}})
	require.NoError(t, err)
	r := roster.New(combat.NewEngine(cat, fixedSrc{}, zap.NewNop()), zap.NewNop(), roster.WithPersister(store))

	require.NoError(t, r.Enroll(ctx, combatant("Ava", 80)))
	require.NoError(t, r.Enroll(ctx, combatant("Bea", 40)))
	require.NoError(t, r.SetRelationship(ctx, "Bea", "Ava", 30))

	res, err := r.Bout(ctx, "Ava", "Bea", "Technical")
	require.NoError(t, err)
	_, err = store.Bouts.Get(ctx, res.ID)
	require.NoError(t, err)

	_, err = r.AdvanceDay(ctx)
	require.NoError(t, err)
	live, err := r.Get("Bea")
	require.NoError(t, err)
	stored, err := store.Combatants.Get(ctx, "Bea")
	require.NoError(t, err)
	assert.Equal(t, live.Injury, stored.Injury)

	rels, err := store.Combatants.ListRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, []roster.RelationshipSeed{{From: "Bea", To: "Ava", Value: 30}}, rels)
}

func TestNewPool_TagsApplicationName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	var name string
	require.NoError(t, pc.RawPool.QueryRow(context.Background(), "SELECT current_setting('application_name')").Scan(&name))
	assert.Equal(t, postgres.ApplicationName, name)
}
