package api

import (
	"time"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/roster"
	"github.com/cory-johannsen/bout/internal/storage/postgres"
)

// Stored bout history paging.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// BoutRequest asks for a bout between two rostered combatants.
type BoutRequest struct {
	Side1 string `json:"side1" validate:"required,max=64"`
	Side2 string `json:"side2" validate:"required,max=64,nefield=Side1"`
	Style string `json:"style" validate:"required,max=64"`
	// Simple selects the single-exchange variant.
	Simple bool `json:"simple"`
}

// CombatantRequest enrolls a new combatant. Attributes and temperament values
// lie in [0, 100].
type CombatantRequest struct {
	Name        string         `json:"name" validate:"required,max=64"`
	Attributes  map[string]int `json:"attributes" validate:"required,min=1,dive,keys,oneof=strength technique stamina agility reflexes,endkeys,min=0,max=100"`
	Temperament map[string]int `json:"temperament" validate:"omitempty,dive,keys,oneof=craziness dominance,endkeys,min=0,max=100"`
}

// RelationshipRequest sets how From regards To.
type RelationshipRequest struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required,nefield=From"`
	Value *int   `json:"value" validate:"required,min=0,max=100"`
}

// InjuryView is a live injury.
type InjuryView struct {
	Severity      string `json:"severity"`
	DaysRemaining int    `json:"days_remaining"`
}

// CombatantView is a combatant as served over HTTP.
type CombatantView struct {
	Name        string         `json:"name"`
	Attributes  map[string]int `json:"attributes"`
	Temperament map[string]int `json:"temperament,omitempty"`
	Injury      *InjuryView    `json:"injury,omitempty"`
	Multiplier  float64        `json:"multiplier"`
}

// TagView is one round commentary trigger.
type TagView struct {
	Tag     string `json:"tag"`
	Subject string `json:"subject,omitempty"`
}

// RoundView is one round of a bout.
type RoundView struct {
	Index   int       `json:"index"`
	Winner  string    `json:"winner"`
	Margin  float64   `json:"margin"`
	Stamina [2]int    `json:"stamina"`
	Tags    []TagView `json:"tags,omitempty"`
}

// EffectView is one injury change.
type EffectView struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Days    int    `json:"days"`
}

// BoutView is the outcome of a bout.
type BoutView struct {
	ID         string          `json:"id,omitempty"`
	Style      string          `json:"style"`
	Winner     string          `json:"winner"`
	Loser      string          `json:"loser"`
	Cards      []int           `json:"cards,omitempty"`
	Scores     []float64       `json:"scores,omitempty"`
	TieBreak   bool            `json:"tie_break"`
	Rounds     []RoundView     `json:"rounds,omitempty"`
	Effects    []EffectView    `json:"effects"`
	Combatants []CombatantView `json:"combatants"`
	Commentary []string        `json:"commentary,omitempty"`
}

// HeadToHeadView is a's record against b.
type HeadToHeadView struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// DayView reports one healing tick.
type DayView struct {
	Healed  []EffectView `json:"healed"`
	Injured []string     `json:"injured"`
}

func combatantView(c *fighter.Combatant) CombatantView {
	v := CombatantView{
		Name:        c.Name,
		Attributes:  c.Attributes,
		Temperament: c.Temperament,
		Multiplier:  c.PerformanceMultiplier(),
	}
	if c.Injured() {
		v.Injury = &InjuryView{Severity: c.Injury.Severity.String(), DaysRemaining: c.Injury.DaysRemaining}
	}
	return v
}

func effectViews(events []event.Event) []EffectView {
	out := make([]EffectView, 0, len(events))
	for _, e := range events {
		v := EffectView{Kind: string(e.Kind), Subject: e.Subject, Days: e.Days}
		if e.From.Valid() {
			v.From = e.From.String()
		}
		if e.To.Valid() {
			v.To = e.To.String()
		}
		out = append(out, v)
	}
	return out
}

func boutView(res *combat.BoutResult, commentary []string) BoutView {
	v := BoutView{
		ID:         res.ID,
		Style:      res.Style,
		Winner:     res.Winner.Name,
		Loser:      res.Loser.Name,
		Cards:      []int{res.Cards.For(res.WinnerSide), res.Cards.For(res.WinnerSide.Other())},
		TieBreak:   res.TieBreak,
		Rounds:     make([]RoundView, 0, len(res.Rounds)),
		Effects:    effectViews(res.Effects),
		Combatants: []CombatantView{combatantView(res.Combatants[0]), combatantView(res.Combatants[1])},
		Commentary: commentary,
	}
	for _, rr := range res.Rounds {
		rv := RoundView{Index: rr.Index, Winner: rr.Winner, Margin: rr.Margin, Stamina: rr.Stamina}
		for _, t := range rr.Tags {
			rv.Tags = append(rv.Tags, TagView{Tag: string(t.Tag), Subject: t.Subject})
		}
		v.Rounds = append(v.Rounds, rv)
	}
	return v
}

func simpleView(res *combat.SimpleResult) BoutView {
	return BoutView{
		Style:      res.Style,
		Winner:     res.Winner.Name,
		Loser:      res.Loser.Name,
		Scores:     res.Scores[:],
		Effects:    effectViews(res.Effects),
		Combatants: []CombatantView{combatantView(res.Winner), combatantView(res.Loser)},
	}
}

func headToHeadView(a, b string, rec roster.Record) HeadToHeadView {
	return HeadToHeadView{A: a, B: b, Wins: rec.Wins, Losses: rec.Losses}
}

// BoutRowView is a stored bout.
type BoutRowView struct {
	ID       string    `json:"id"`
	Style    string    `json:"style"`
	Side1    string    `json:"side1"`
	Side2    string    `json:"side2"`
	Winner   string    `json:"winner"`
	Loser    string    `json:"loser"`
	Cards    []int     `json:"cards"`
	TieBreak bool      `json:"tie_break"`
	FoughtAt time.Time `json:"fought_at"`
}

func boutRowView(b postgres.BoutRow) BoutRowView {
	return BoutRowView{
		ID:       b.ID,
		Style:    b.Style,
		Side1:    b.Side1,
		Side2:    b.Side2,
		Winner:   b.Winner,
		Loser:    b.Loser,
		Cards:    []int{b.CardsWinner, b.CardsLoser},
		TieBreak: b.TieBreak,
		FoughtAt: b.FoughtAt,
	}
}
