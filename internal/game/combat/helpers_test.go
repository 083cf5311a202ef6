package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/style"
)

// fixedSrc returns the same value for every draw.
type fixedSrc struct {
	f float64
	i int
}

func (s fixedSrc) Intn(_ int) int   { return s.i }
func (s fixedSrc) Float64() float64 { return s.f }

// seqSrc replays scripted draws and panics on any draw it was not given.
type seqSrc struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *seqSrc) Float64() float64 {
	if s.fi >= len(s.floats) {
		panic("seqSrc: unexpected Float64 draw")
	}
	v := s.floats[s.fi]
	s.fi++
	return v
}

func (s *seqSrc) Intn(_ int) int {
	if s.ii >= len(s.ints) {
		panic("seqSrc: unexpected Intn draw")
	}
	v := s.ints[s.ii]
	s.ii++
	return v
}

func (s *seqSrc) draws() int { return s.fi + s.ii }

// hookSrc calls onDraw before the first draw, then behaves like fixedSrc.
type hookSrc struct {
	fixedSrc
	onDraw func()
	fired  bool
}

func (s *hookSrc) fire() {
	if !s.fired {
		s.fired = true
		s.onDraw()
	}
}

func (s *hookSrc) Intn(n int) int   { s.fire(); return s.fixedSrc.Intn(n) }
func (s *hookSrc) Float64() float64 { s.fire(); return s.fixedSrc.Float64() }

func evenFighter(name string) *fighter.Combatant {
	return &fighter.Combatant{
		Name: name,
		Attributes: map[string]int{
			fighter.Strength: 50, fighter.Technique: 50, fighter.Stamina: 50,
			fighter.Agility: 50, fighter.Reflexes: 50,
		},
	}
}

func withTechnique(name string, technique int) *fighter.Combatant {
	c := evenFighter(name)
	c.Attributes[fighter.Technique] = technique
	return c
}

func techniqueOnly(weight float64) *style.Style {
	return &style.Style{Name: "Technical", Weights: map[string]float64{fighter.Technique: weight}}
}

func testCatalog(t *testing.T) *style.Catalog {
	t.Helper()
	c, err := style.NewCatalog(
		techniqueOnly(1.0),
		&style.Style{Name: "MMA", Weights: map[string]float64{
			fighter.Strength: 0.3, fighter.Technique: 0.3, fighter.Stamina: 0.2,
			fighter.Agility: 0.1, fighter.Reflexes: 0.1,
		}},
	)
	require.NoError(t, err)
	return c
}
