package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cory-johannsen/bout/internal/game/event"
)

// CardMarginBuckets covers every possible winner-minus-loser card margin.
var CardMarginBuckets = []float64{1, 3, 5}

// BoutMetrics counts bouts, rounds, commentary tags and injury changes. It
// is an event.Sink, so it can be attached to the engine and roster directly.
type BoutMetrics struct {
	BoutsTotal     *prometheus.CounterVec
	RoundsTotal    *prometheus.CounterVec
	RoundTagsTotal *prometheus.CounterVec
	CardMargin     *prometheus.HistogramVec
	InjuriesTotal  *prometheus.CounterVec
	HealsTotal     *prometheus.CounterVec
	InjuredRoster  prometheus.Gauge
	RosterSize     prometheus.Gauge
}

// NewBoutMetrics registers the bout collectors with registerer.
//
// Precondition: registerer must be non-nil and must not already hold
// collectors with the same names.
func NewBoutMetrics(namespace string, registerer prometheus.Registerer) *BoutMetrics {
	factory := promauto.With(registerer)

	return &BoutMetrics{
		BoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "combat",
				Name:      "bouts_total",
				Help:      "Total number of resolved bouts by style",
			},
			[]string{"style"},
		),
		RoundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "combat",
				Name:      "rounds_total",
				Help:      "Total number of simulated rounds by style",
			},
			[]string{"style"},
		),
		RoundTagsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "combat",
				Name:      "round_tags_total",
				Help:      "Commentary tags emitted by rounds",
			},
			[]string{"tag"},
		),
		CardMargin: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "combat",
				Name:      "card_margin",
				Help:      "Winner cards minus loser cards per bout",
				Buckets:   CardMarginBuckets,
			},
			[]string{"style"},
		),
		InjuriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "injury",
				Name:      "changes_total",
				Help:      "Injury inflictions and aggravations by resulting severity",
			},
			[]string{"kind", "severity"},
		),
		HealsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "injury",
				Name:      "heals_total",
				Help:      "Injuries healed by severity",
			},
			[]string{"severity"},
		),
		InjuredRoster: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "roster",
				Name:      "injured",
				Help:      "Combatants currently carrying an injury",
			},
		),
		RosterSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "roster",
				Name:      "combatants",
				Help:      "Combatants on the roster",
			},
		),
	}
}

// Publish records e.
func (m *BoutMetrics) Publish(e event.Event) {
	switch e.Kind {
	case event.KindRound:
		m.RoundsTotal.WithLabelValues(e.Style).Inc()
		for _, t := range e.Tags {
			m.RoundTagsTotal.WithLabelValues(string(t.Tag)).Inc()
		}
	case event.KindBoutResolved:
		m.BoutsTotal.WithLabelValues(e.Style).Inc()
		m.CardMargin.WithLabelValues(e.Style).Observe(float64(e.Cards[0] - e.Cards[1]))
	case event.KindInjuryInflicted, event.KindInjuryAggravated:
		m.InjuriesTotal.WithLabelValues(string(e.Kind), e.To.String()).Inc()
	case event.KindInjuryHealed:
		m.HealsTotal.WithLabelValues(e.From.String()).Inc()
	}
}

// ObserveRoster sets the roster gauges.
func (m *BoutMetrics) ObserveRoster(size, injured int) {
	m.RosterSize.Set(float64(size))
	m.InjuredRoster.Set(float64(injured))
}
