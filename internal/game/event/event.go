// Package event carries structured facts out of the bout engine and the injury
// ledger. Rendering them as text is the concern of a separate presentation step.
package event

import (
	"sync"

	"github.com/cory-johannsen/bout/internal/game/injury"
)

// Kind distinguishes event payloads.
type Kind string

const (
	KindRound            Kind = "round"
	KindBoutResolved     Kind = "bout_resolved"
	KindInjuryInflicted  Kind = "injury_inflicted"
	KindInjuryAggravated Kind = "injury_aggravated"
	KindInjuryHealed     Kind = "injury_healed"
)

// Tag is an advisory commentary trigger attached to one round.
type Tag string

const (
	TagOpener   Tag = "opener"
	TagBigSwing Tag = "big_swing"
	TagMomentum Tag = "momentum"
	TagFatigue  Tag = "fatigue"
)

// RoundTag is a Tag together with the combatant it concerns. Subject is empty
// for tags that concern the whole round.
type RoundTag struct {
	Tag     Tag
	Subject string
}

// Event is one structured fact. Fields not relevant to Kind are zero.
type Event struct {
	Kind Kind
	// BoutID is set for events produced by a bout.
	BoutID string
	// Round is the 1-based round index for KindRound.
	Round int
	// Tags holds the round's commentary triggers for KindRound.
	Tags []RoundTag
	// Subject is the combatant the event is about: the round winner, the
	// bout winner, or the injured combatant.
	Subject string
	// Opponent is the other combatant in a bout.
	Opponent string
	// Style is the fighting style of the bout.
	Style string
	// Margin is the round's performance difference.
	Margin float64
	// Cards is the winner's and loser's round tally for KindBoutResolved.
	Cards [2]int
	// From and To are the severities before and after an injury change.
	// From is zero when the combatant was healthy.
	From injury.Severity
	To   injury.Severity
	// Days is the days remaining after an injury change.
	Days int
}

// Sink receives events. Implementations decide formatting and storage.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans each event out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Publish(e)
		}
	})
}

// PublishAll sends events to s in order.
func PublishAll(s Sink, events []Event) {
	for _, e := range events {
		s.Publish(e)
	}
}

// Log is an append-only, in-memory Sink. It is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	events []Event
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Publish appends e.
func (l *Log) Publish(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a snapshot of every event published so far.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// OfKind returns the published events of kind k, in order.
func (l *Log) OfKind(k Kind) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of events published.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
