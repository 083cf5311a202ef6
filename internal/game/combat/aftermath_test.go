package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/style"
)

func TestRollSeverity(t *testing.T) {
	assert.Equal(t, injury.Low, combat.RollSeverity(fixedSrc{f: 0.69}))
	assert.Equal(t, injury.Medium, combat.RollSeverity(fixedSrc{f: 0.7}))
}

func TestApplyAftermath_NoInjury(t *testing.T) {
	w, l := evenFighter("W"), evenFighter("L")
	src := &seqSrc{floats: []float64{0.5}}

	events := combat.ApplyAftermath(w, l, src, injury.PolicyOverwrite)

	assert.Empty(t, events)
	assert.Nil(t, w.Injury)
	assert.Nil(t, l.Injury)
	assert.Equal(t, 1, src.draws(), "healthy combatants take no aggravation draw")
}

func TestApplyAftermath_FreshInjuryNotAggravated(t *testing.T) {
	w, l := evenFighter("W"), evenFighter("L")
	src := &seqSrc{floats: []float64{0.05, 0.3, 0.9}}

	events := combat.ApplyAftermath(w, l, src, injury.PolicyOverwrite)

	require.Len(t, events, 1)
	assert.Equal(t, event.KindInjuryInflicted, events[0].Kind)
	assert.Equal(t, "L", events[0].Subject)
	assert.Equal(t, injury.Severity(0), events[0].From)
	assert.Equal(t, injury.Low, events[0].To)
	assert.Equal(t, &injury.State{Severity: injury.Low, DaysRemaining: 2}, l.Injury)
	assert.Nil(t, w.Injury)
}

func TestApplyAftermath_FreshInjuryAggravatedSameBout(t *testing.T) {
	w, l := evenFighter("W"), evenFighter("L")
	src := &seqSrc{floats: []float64{0.05, 0.8, 0.1}}

	events := combat.ApplyAftermath(w, l, src, injury.PolicyOverwrite)

	require.Len(t, events, 2)
	assert.Equal(t, event.KindInjuryInflicted, events[0].Kind)
	assert.Equal(t, injury.Medium, events[0].To)
	assert.Equal(t, event.KindInjuryAggravated, events[1].Kind)
	assert.Equal(t, injury.Medium, events[1].From)
	assert.Equal(t, injury.Severe, events[1].To)
	assert.Equal(t, 7, events[1].Days)
	assert.Equal(t, &injury.State{Severity: injury.Severe, DaysRemaining: 7}, l.Injury)
}

func TestApplyAftermath_WinnerAggravatedBeforeLoser(t *testing.T) {
	w, l := evenFighter("W"), evenFighter("L")
	w.Injury = &injury.State{Severity: injury.Low, DaysRemaining: 1}
	l.Injury = &injury.State{Severity: injury.Medium, DaysRemaining: 6}
	src := &seqSrc{floats: []float64{0.5, 0.2, 0.2}}

	events := combat.ApplyAftermath(w, l, src, injury.PolicyOverwrite)

	require.Len(t, events, 2)
	assert.Equal(t, "W", events[0].Subject)
	assert.Equal(t, injury.Medium, events[0].To)
	assert.Equal(t, 4, events[0].Days)
	assert.Equal(t, "L", events[1].Subject)
	assert.Equal(t, injury.Severe, events[1].To)
	assert.Equal(t, 7, events[1].Days)
}

func TestApplyAftermath_SevereStaysSevere(t *testing.T) {
	w, l := evenFighter("W"), evenFighter("L")
	l.Injury = &injury.State{Severity: injury.Severe, DaysRemaining: 9}
	src := &seqSrc{floats: []float64{0.5, 0.0}}

	events := combat.ApplyAftermath(w, l, src, injury.PolicyOverwrite)

	require.Len(t, events, 1)
	assert.Equal(t, injury.Severe, events[0].From)
	assert.Equal(t, injury.Severe, events[0].To)
	assert.Equal(t, 10, l.Injury.DaysRemaining)
}

func TestApplyAftermath_ReinjuryPolicy(t *testing.T) {
	script := func() *seqSrc { return &seqSrc{floats: []float64{0.05, 0.3, 0.9}} }

	t.Run("overwrite replaces the existing injury", func(t *testing.T) {
		w, l := evenFighter("W"), evenFighter("L")
		l.Injury = &injury.State{Severity: injury.Severe, DaysRemaining: 6}

		events := combat.ApplyAftermath(w, l, script(), injury.PolicyOverwrite)

		require.Len(t, events, 1)
		assert.Equal(t, injury.Severe, events[0].From)
		assert.Equal(t, injury.Low, events[0].To)
		assert.Equal(t, &injury.State{Severity: injury.Low, DaysRemaining: 2}, l.Injury)
	})

	t.Run("keep_worse retains the worse injury", func(t *testing.T) {
		w, l := evenFighter("W"), evenFighter("L")
		l.Injury = &injury.State{Severity: injury.Severe, DaysRemaining: 6}

		events := combat.ApplyAftermath(w, l, script(), injury.PolicyKeepWorse)

		require.Len(t, events, 1)
		assert.Equal(t, injury.Severe, events[0].To)
		assert.Equal(t, &injury.State{Severity: injury.Severe, DaysRemaining: 6}, l.Injury)
	})
}

func TestResolveFight_UnknownStyleLeavesStateUntouched(t *testing.T) {
	a, b := evenFighter("A"), evenFighter("B")
	b.Injury = injury.New(injury.Low)
	a0, b0 := a.Clone(), b.Clone()
	src := &seqSrc{}

	res, err := combat.ResolveFight(a, b, "Sumo", testCatalog(t), src, injury.PolicyOverwrite)

	require.Error(t, err)
	assert.ErrorIs(t, err, style.ErrUnknownStyle)
	assert.Nil(t, res)
	assert.Equal(t, 0, src.draws())
	assert.Equal(t, a0, a)
	assert.Equal(t, b0, b)
}

func TestResolveFight_AppliesAftermathToLoser(t *testing.T) {
	a := withTechnique("A", 80)
	b := withTechnique("B", 20)
	cat := testCatalog(t)

	// Every draw at 0: A sweeps, B is injured Low, then B's fresh injury
	// aggravates to Medium with days max(2+1, 4).
	res, err := combat.ResolveFight(a, b, "Technical", cat, fixedSrc{}, injury.PolicyOverwrite)

	require.NoError(t, err)
	assert.Same(t, a, res.Winner)
	require.Len(t, res.Effects, 2)
	assert.Equal(t, event.KindInjuryInflicted, res.Effects[0].Kind)
	assert.Equal(t, injury.Low, res.Effects[0].To)
	assert.Equal(t, event.KindInjuryAggravated, res.Effects[1].Kind)
	assert.Equal(t, &injury.State{Severity: injury.Medium, DaysRemaining: 4}, b.Injury)
	assert.Nil(t, a.Injury)
}
