// Package api serves the roster over HTTP: bouts, combatant state,
// head-to-head records, relationships, and the manual day advance.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/fighter"
	"github.com/cory-johannsen/bout/internal/game/roster"
	"github.com/cory-johannsen/bout/internal/game/style"
	"github.com/cory-johannsen/bout/internal/narrate"
	"github.com/cory-johannsen/bout/internal/storage/postgres"
)

// History reads stored bouts.
type History interface {
	ListFor(ctx context.Context, name string, limit int) ([]postgres.BoutRow, error)
	Get(ctx context.Context, id string) (*postgres.BoutRow, error)
}

// Handler implements the HTTP endpoints. Persistence happens inside the
// roster; see roster.WithPersister.
type Handler struct {
	roster   *roster.Roster
	history  History
	narrator *narrate.Narrator
	logger   *zap.Logger
	observe  func(size, injured int)
}

// Option configures a Handler.
type Option func(*Handler)

// WithHistory serves stored bouts from h at /bouts/:id and
// /combatants/:name/bouts.
func WithHistory(h History) Option {
	return func(hd *Handler) { hd.history = h }
}

// WithRosterObserver calls fn with the roster size and injured count after
// every change.
func WithRosterObserver(fn func(size, injured int)) Option {
	return func(h *Handler) { h.observe = fn }
}

// NewHandler creates a Handler over r.
//
// Precondition: r and logger must be non-nil.
func NewHandler(r *roster.Roster, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		roster:   r,
		narrator: narrate.New(false),
		logger:   logger,
		observe:  func(int, int) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewServer builds the echo instance with every route registered. When
// gatherer is non-nil its metrics are served at /metrics.
func NewServer(h *Handler, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	h.Register(e)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return e
}

// Register adds the handler's routes to e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/combatants", h.ListCombatants)
	e.POST("/combatants", h.EnrollCombatant)
	e.GET("/combatants/:name", h.GetCombatant)
	e.GET("/head-to-head/:a/:b", h.HeadToHead)
	e.POST("/bouts", h.CreateBout)
	e.POST("/relationships", h.SetRelationship)
	e.POST("/days/advance", h.AdvanceDay)
	if h.history != nil {
		e.GET("/bouts/:id", h.GetBout)
		e.GET("/combatants/:name/bouts", h.ListBouts)
	}
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListCombatants returns every combatant sorted by name.
func (h *Handler) ListCombatants(c echo.Context) error {
	all := h.roster.All()
	out := make([]CombatantView, 0, len(all))
	for _, cb := range all {
		out = append(out, combatantView(cb))
	}
	return c.JSON(http.StatusOK, out)
}

// EnrollCombatant adds a new, uninjured combatant to the roster.
func (h *Handler) EnrollCombatant(c echo.Context) error {
	var req CombatantRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cb := &fighter.Combatant{Name: req.Name, Attributes: req.Attributes, Temperament: req.Temperament}
	if err := h.roster.Enroll(c.Request().Context(), cb); err != nil {
		return h.httpError(err)
	}
	h.observeRoster()
	added, err := h.roster.Get(req.Name)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, combatantView(added))
}

// GetCombatant returns one combatant.
func (h *Handler) GetCombatant(c echo.Context) error {
	cb, err := h.roster.Get(c.Param("name"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, combatantView(cb))
}

// HeadToHead returns a's record against b.
func (h *Handler) HeadToHead(c echo.Context) error {
	a, b := c.Param("a"), c.Param("b")
	for _, name := range []string{a, b} {
		if _, err := h.roster.Get(name); err != nil {
			return h.httpError(err)
		}
	}
	return c.JSON(http.StatusOK, headToHeadView(a, b, h.roster.HeadToHead(a, b)))
}

// CreateBout runs a bout. The roster persists its outcome before returning.
func (h *Handler) CreateBout(c echo.Context) error {
	var req BoutRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if req.Simple {
		res, err := h.roster.Simple(ctx, req.Side1, req.Side2, req.Style)
		if err != nil {
			return h.httpError(err)
		}
		h.observeRoster()
		return c.JSON(http.StatusCreated, simpleView(res))
	}

	res, err := h.roster.Bout(ctx, req.Side1, req.Side2, req.Style)
	if err != nil {
		return h.httpError(err)
	}
	h.observeRoster()
	return c.JSON(http.StatusCreated, boutView(res, h.narrator.Bout(res)))
}

// SetRelationship stores how one combatant regards another.
func (h *Handler) SetRelationship(c echo.Context) error {
	var req RelationshipRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.roster.SetRelationship(c.Request().Context(), req.From, req.To, *req.Value); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdvanceDay runs one healing tick immediately.
func (h *Handler) AdvanceDay(c echo.Context) error {
	healed, err := h.roster.AdvanceDay(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	h.observeRoster()
	return c.JSON(http.StatusOK, DayView{Healed: effectViews(healed), Injured: h.roster.Injured()})
}

// GetBout returns one stored bout.
func (h *Handler) GetBout(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bout id must be a UUID")
	}
	row, err := h.history.Get(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, boutRowView(*row))
}

// ListBouts returns a combatant's most recent stored bouts, newest first.
// The limit query parameter defaults to DefaultHistoryLimit.
func (h *Handler) ListBouts(c echo.Context) error {
	name := c.Param("name")
	if _, err := h.roster.Get(name); err != nil {
		return h.httpError(err)
	}
	limit := DefaultHistoryLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}
	rows, err := h.history.ListFor(c.Request().Context(), name, limit)
	if err != nil {
		return h.httpError(err)
	}
	out := make([]BoutRowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, boutRowView(row))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) observeRoster() {
	h.observe(h.roster.Len(), len(h.roster.Injured()))
}

// httpError maps domain errors to HTTP statuses. Storage failures are logged
// and reported without their cause.
func (h *Handler) httpError(err error) error {
	switch {
	case errors.Is(err, roster.ErrUnknownCombatant), errors.Is(err, postgres.ErrBoutNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, style.ErrUnknownStyle), errors.Is(err, combat.ErrSameCombatant):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrDuplicateCombatant), errors.Is(err, combat.ErrCombatantBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
