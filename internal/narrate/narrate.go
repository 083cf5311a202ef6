// Package narrate turns structured bout and injury events into human-readable
// commentary. It is the only place event text is produced.
package narrate

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/event"
)

// Narrator renders events as text, optionally ANSI-colored.
type Narrator struct {
	color bool
}

// New returns a Narrator. When color is false output contains no escape codes.
func New(color bool) *Narrator {
	return &Narrator{color: color}
}

func (n *Narrator) paint(color, text string) string {
	if !n.color {
		return text
	}
	return Colorize(color, text)
}

// Event renders a single event as one line of commentary. Round events with
// tags render one sentence per tag after the round summary.
func (n *Narrator) Event(e event.Event) string {
	switch e.Kind {
	case event.KindRound:
		return n.round(e)
	case event.KindBoutResolved:
		return n.paint(BrightWhite, fmt.Sprintf("%s defeats %s %d-%d in %s.",
			e.Subject, e.Opponent, e.Cards[0], e.Cards[1], e.Style))
	case event.KindInjuryInflicted:
		p := e.To.Preset()
		line := fmt.Sprintf("%s suffered a %s (%s) - %d day(s) to heal.", e.Subject, p.Label, e.To, e.Days)
		return n.paint(BrightRed, line)
	case event.KindInjuryAggravated:
		return n.paint(Red, fmt.Sprintf("%s's injury worsened: %s -> %s (%d day(s) to heal).",
			e.Subject, e.From, e.To, e.Days))
	case event.KindInjuryHealed:
		return n.paint(BrightGreen, fmt.Sprintf("%s's %s injury has healed.", e.Subject, e.From))
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Subject)
	}
}

func (n *Narrator) round(e event.Event) string {
	var b strings.Builder
	b.WriteString(n.paint(Cyan, fmt.Sprintf("Round %d:", e.Round)))
	b.WriteString(fmt.Sprintf(" %s takes it over %s (margin %.1f).", e.Subject, e.Opponent, e.Margin))
	for _, t := range e.Tags {
		b.WriteString(" ")
		b.WriteString(n.tag(t))
	}
	return b.String()
}

func (n *Narrator) tag(t event.RoundTag) string {
	switch t.Tag {
	case event.TagOpener:
		return n.paint(Dim, "The fighters feel each other out.")
	case event.TagBigSwing:
		return n.paint(BrightYellow, fmt.Sprintf("%s lands a huge exchange!", t.Subject))
	case event.TagMomentum:
		return n.paint(Yellow, fmt.Sprintf("%s is riding the momentum.", t.Subject))
	case event.TagFatigue:
		return n.paint(Magenta, fmt.Sprintf("%s is visibly tiring.", t.Subject))
	default:
		return string(t.Tag)
	}
}

// Bout renders every event of res, one line per event, in order.
func (n *Narrator) Bout(res *combat.BoutResult) []string {
	events := res.Events()
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, n.Event(e))
	}
	return lines
}

// WriterSink is an event.Sink that writes each event's commentary line to w.
type WriterSink struct {
	n *Narrator
	w io.Writer
}

// NewWriterSink returns a sink printing n's rendering of every event to w.
// Write errors are dropped.
func NewWriterSink(w io.Writer, n *Narrator) *WriterSink {
	return &WriterSink{n: n, w: w}
}

// Publish writes e's commentary line.
func (s *WriterSink) Publish(e event.Event) {
	_, _ = fmt.Fprintln(s.w, s.n.Event(e))
}
