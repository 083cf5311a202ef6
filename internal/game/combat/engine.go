package combat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/style"
)

// ErrCombatantBusy is returned when a combatant is already in a bout.
var ErrCombatantBusy = errors.New("combatant already in a bout")

// ErrSameCombatant is returned when both sides name the same combatant.
var ErrSameCombatant = errors.New("combatant cannot fight itself")

// Engine runs bouts against a style catalog and a shared random source,
// publishes each bout's events, and refuses to start a bout on a combatant
// that is already fighting.
// All methods are safe for concurrent use.
type Engine struct {
	styles style.Lookup
	src    dice.Source
	logger *zap.Logger
	sink   event.Sink
	policy injury.Policy
	newID  func() string

	mu   sync.Mutex
	busy map[string]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink publishes every bout event to s.
func WithSink(s event.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithPolicy sets the re-injury policy used by post-bout infliction.
func WithPolicy(p injury.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithIDGenerator replaces the bout ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an Engine.
//
// Precondition: styles, src, and logger must be non-nil.
// Postcondition: Returns an Engine with no combatant busy, discarding events
// unless WithSink is given.
func NewEngine(styles style.Lookup, src dice.Source, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		styles: styles,
		src:    src,
		logger: logger,
		sink:   event.Discard,
		policy: injury.PolicyOverwrite,
		newID:  func() string { return uuid.New().String() },
		busy:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether the named combatant is currently in a bout.
func (e *Engine) Busy(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.busy[name]
	return ok
}

func (e *Engine) acquire(c1, c2 *fighter.Combatant) error {
	if c1 == c2 || c1.Name == c2.Name {
		return fmt.Errorf("%w: %q", ErrSameCombatant, c1.Name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range []string{c1.Name, c2.Name} {
		if _, ok := e.busy[name]; ok {
			return fmt.Errorf("%w: %q", ErrCombatantBusy, name)
		}
	}
	e.busy[c1.Name] = struct{}{}
	e.busy[c2.Name] = struct{}{}
	return nil
}

func (e *Engine) release(c1, c2 *fighter.Combatant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.busy, c1.Name)
	delete(e.busy, c2.Name)
}

// Fight resolves a bout between c1 and c2 under styleName, applies post-bout
// injury effects, and publishes the bout's events.
//
// Precondition: c1 and c2 are well-formed roster combatants.
// Postcondition: Returns an error matching style.ErrUnknownStyle,
// ErrSameCombatant, or ErrCombatantBusy without touching either combatant;
// otherwise returns a result with a fresh ID.
func (e *Engine) Fight(c1, c2 *fighter.Combatant, styleName string) (*BoutResult, error) {
	st, err := e.styles.Lookup(styleName)
	if err != nil {
		e.logger.Info("bout rejected",
			zap.String("style", styleName),
			zap.String("side1", c1.Name),
			zap.String("side2", c2.Name),
			zap.Error(err),
		)
		return nil, err
	}
	if err := e.acquire(c1, c2); err != nil {
		e.logger.Warn("bout rejected", zap.Error(err))
		return nil, err
	}
	defer e.release(c1, c2)

	e.logger.Debug("bout started",
		zap.String("style", st.Name),
		zap.String("side1", c1.Name),
		zap.String("side2", c2.Name),
	)

	res := Resolve(c1, c2, st, e.src)
	res.ID = e.newID()
	res.Effects = ApplyAftermath(res.Winner, res.Loser, e.src, e.policy)
	for i := range res.Effects {
		res.Effects[i].BoutID = res.ID
	}

	e.logger.Info("bout resolved",
		zap.String("bout_id", res.ID),
		zap.String("style", res.Style),
		zap.String("winner", res.Winner.Name),
		zap.String("loser", res.Loser.Name),
		zap.Int("cards_winner", res.Cards.For(res.WinnerSide)),
		zap.Int("cards_loser", res.Cards.For(res.WinnerSide.Other())),
		zap.Bool("tie_break", res.TieBreak),
	)
	e.logEffects(res.Effects)

	event.PublishAll(e.sink, res.Events())
	return res, nil
}

// Simple runs the single-exchange variant between c1 and c2 with the same
// busy-combatant guard as Fight, and publishes any injury it causes.
func (e *Engine) Simple(c1, c2 *fighter.Combatant, styleName string) (*SimpleResult, error) {
	if _, err := e.styles.Lookup(styleName); err != nil {
		return nil, err
	}
	if err := e.acquire(c1, c2); err != nil {
		e.logger.Warn("simple fight rejected", zap.Error(err))
		return nil, err
	}
	defer e.release(c1, c2)

	res, err := SimpleFight(c1, c2, styleName, e.styles, e.src, e.policy)
	if err != nil {
		return nil, err
	}
	e.logger.Info("simple fight resolved",
		zap.String("style", res.Style),
		zap.String("winner", res.Winner.Name),
		zap.String("loser", res.Loser.Name),
	)
	e.logEffects(res.Effects)
	event.PublishAll(e.sink, res.Effects)
	return res, nil
}

func (e *Engine) logEffects(effects []event.Event) {
	for _, ev := range effects {
		e.logger.Info("injury changed",
			zap.String("kind", string(ev.Kind)),
			zap.String("combatant", ev.Subject),
			zap.Stringer("from", ev.From),
			zap.Stringer("to", ev.To),
			zap.Int("days", ev.Days),
		)
	}
}
