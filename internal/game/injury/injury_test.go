package injury_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bout/internal/game/injury"
)

func drawSeverity(t *rapid.T, label string) injury.Severity {
	return rapid.SampledFrom([]injury.Severity{injury.Low, injury.Medium, injury.Severe}).Draw(t, label)
}

func TestPresets(t *testing.T) {
	cases := []struct {
		sev   injury.Severity
		days  int
		mult  float64
		label string
	}{
		{injury.Low, 2, 0.90, "Bruise/strain"},
		{injury.Medium, 4, 0.75, "Sprain"},
		{injury.Severe, 7, 0.55, "Major injury"},
	}
	for _, tc := range cases {
		t.Run(tc.sev.String(), func(t *testing.T) {
			p := tc.sev.Preset()
			assert.Equal(t, tc.days, p.Days)
			assert.Equal(t, tc.mult, p.Multiplier)
			assert.Equal(t, tc.label, p.Label)
		})
	}
}

func TestEscalate(t *testing.T) {
	assert.Equal(t, injury.Medium, injury.Low.Escalate())
	assert.Equal(t, injury.Severe, injury.Medium.Escalate())
	assert.Equal(t, injury.Severe, injury.Severe.Escalate())
	assert.Equal(t, injury.Severity(0), injury.Severity(0).Escalate(), "unknown severity is not promoted")
	assert.Equal(t, injury.Severity(9), injury.Severity(9).Escalate())
}

func TestParseSeverity(t *testing.T) {
	sev, err := injury.ParseSeverity(" Medium ")
	require.NoError(t, err)
	assert.Equal(t, injury.Medium, sev)

	_, err = injury.ParseSeverity("broken")
	assert.Error(t, err)
}

func TestMultiplier_NilIsHealthy(t *testing.T) {
	var s *injury.State
	assert.Equal(t, 1.0, s.Multiplier())
	assert.False(t, s.Active())
}

func TestMultiplier_ZeroDaysIsHealthy(t *testing.T) {
	s := &injury.State{Severity: injury.Severe, DaysRemaining: 0}
	assert.Equal(t, 1.0, s.Multiplier())
}

func TestAggravate_ExtendsToPreset(t *testing.T) {
	s := &injury.State{Severity: injury.Low, DaysRemaining: 1}
	from, to := s.Aggravate()
	assert.Equal(t, injury.Low, from)
	assert.Equal(t, injury.Medium, to)
	assert.Equal(t, 4, s.DaysRemaining, "max(1+1, 4)")
}

func TestAggravate_SevereStaysSevereAndExtendsByOne(t *testing.T) {
	s := &injury.State{Severity: injury.Severe, DaysRemaining: 7}
	from, to := s.Aggravate()
	assert.Equal(t, injury.Severe, from)
	assert.Equal(t, injury.Severe, to)
	assert.Equal(t, 8, s.DaysRemaining, "max(7+1, 7)")
}

func TestTick_ReportsHealedAtZero(t *testing.T) {
	s := &injury.State{Severity: injury.Severe, DaysRemaining: 1}
	assert.True(t, s.Tick())
	assert.Equal(t, 0, s.DaysRemaining)
}

func TestState_YAMLRoundTrip(t *testing.T) {
	var s injury.State
	require.NoError(t, yaml.Unmarshal([]byte("severity: medium\ndays_remaining: 3\n"), &s))
	assert.Equal(t, injury.State{Severity: injury.Medium, DaysRemaining: 3}, s)

	out, err := yaml.Marshal(&s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "severity: medium")
}

func TestPolicyOverwrite_DowngradesExisting(t *testing.T) {
	existing := &injury.State{Severity: injury.Severe, DaysRemaining: 6}
	got := injury.PolicyOverwrite.Inflict(existing, injury.Low)
	assert.Equal(t, injury.Low, got.Severity)
	assert.Equal(t, 2, got.DaysRemaining)
	assert.Equal(t, injury.Severe, existing.Severity, "existing must not be modified")
}

func TestPolicyKeepWorse_NeverDowngrades(t *testing.T) {
	existing := &injury.State{Severity: injury.Severe, DaysRemaining: 6}
	got := injury.PolicyKeepWorse.Inflict(existing, injury.Low)
	assert.Equal(t, injury.Severe, got.Severity)
	assert.Equal(t, 6, got.DaysRemaining)
}

func TestPolicyKeepWorse_UpgradesMilderExisting(t *testing.T) {
	existing := &injury.State{Severity: injury.Low, DaysRemaining: 1}
	got := injury.PolicyKeepWorse.Inflict(existing, injury.Medium)
	assert.Equal(t, injury.Medium, got.Severity)
	assert.Equal(t, 4, got.DaysRemaining)
}

func TestParsePolicy(t *testing.T) {
	p, err := injury.ParsePolicy("keep_worse")
	require.NoError(t, err)
	assert.Equal(t, injury.PolicyKeepWorse, p)

	p, err = injury.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, injury.PolicyOverwrite, p)

	_, err = injury.ParsePolicy("stack")
	assert.Error(t, err)
}

func TestPropertyMultiplier_InPresetSet(t *testing.T) {
	allowed := []float64{1.0, 0.90, 0.75, 0.55}
	rapid.Check(t, func(rt *rapid.T) {
		s := &injury.State{
			Severity:      drawSeverity(rt, "severity"),
			DaysRemaining: rapid.IntRange(0, 20).Draw(rt, "days"),
		}
		assert.Contains(rt, allowed, s.Multiplier())
	})
}

func TestPropertyTick_TerminatesWithinDays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		days := rapid.IntRange(1, 30).Draw(rt, "days")
		s := &injury.State{Severity: drawSeverity(rt, "severity"), DaysRemaining: days}
		ticks := 0
		for !s.Tick() {
			ticks++
			require.GreaterOrEqual(rt, s.DaysRemaining, 0)
			require.LessOrEqual(rt, ticks, days)
		}
		assert.Equal(rt, days-1, ticks)
		assert.Equal(rt, 0, s.DaysRemaining)
	})
}

func TestPropertyAggravate_NeverShortens(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := &injury.State{
			Severity:      drawSeverity(rt, "severity"),
			DaysRemaining: rapid.IntRange(1, 20).Draw(rt, "days"),
		}
		before := s.DaysRemaining
		from, to := s.Aggravate()
		assert.GreaterOrEqual(rt, to, from)
		assert.Greater(rt, s.DaysRemaining, before)
		assert.GreaterOrEqual(rt, s.DaysRemaining, to.Preset().Days)
	})
}
