package marketplace

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

type Handler struct {
	lifecycle   *Lifecycle
	acceptances *AcceptanceLedger
}

func NewHandler(l *Lifecycle, a *AcceptanceLedger) *Handler {
	return &Handler{lifecycle: l, acceptances: a}
}

// Register mounts the request routes on an authenticated group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/requests", h.CreateRequest)
	g.GET("/requests/available", h.ListAvailable)
	g.GET("/requests/mine", h.ListMine)
	g.GET("/requests/:id", h.GetRequest)
	g.PATCH("/requests/:id", h.UpdateRequest)
	g.POST("/requests/:id/choose", h.ChooseProvider)
	g.POST("/requests/:id/status", h.Transition)
	g.POST("/requests/:id/acceptances", h.ExpressInterest)
	g.DELETE("/requests/:id/acceptances/me", h.WithdrawInterest)
	g.GET("/requests/:id/acceptances", h.ListAcceptances)
}

func requestID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("id", "must be a uuid")
	}
	return id, nil
}

// =========================
// CreateRequest - requester posts a job
// =========================
func (h *Handler) CreateRequest(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	var req domain.NewRequest
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	r, err := h.lifecycle.Create(c.Request().Context(), uid, req)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": r})
}

func (h *Handler) ListAvailable(c echo.Context) error {
	if _, ok := mware.UserID(c); !ok {
		return mware.Unauthorized(c)
	}
	limit, offset := mware.Page(c)
	list, err := h.lifecycle.ListAvailable(c.Request().Context(), limit, offset)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

func (h *Handler) ListMine(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	mine, err := h.lifecycle.ListMine(c.Request().Context(), uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, mine)
}

func (h *Handler) GetRequest(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	r, err := h.lifecycle.Get(c.Request().Context(), id, uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": r})
}

func (h *Handler) UpdateRequest(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	var upd domain.RequestUpdate
	if err := c.Bind(&upd); err != nil {
		return mware.BadRequest(c)
	}
	r, err := h.lifecycle.Update(c.Request().Context(), id, uid, upd)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": r})
}

// =========================
// ChooseProvider - requester picks one of the interested heroes
// =========================
func (h *Handler) ChooseProvider(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	var req struct {
		HeroID string `json:"hero_id"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	if req.HeroID == "" {
		return mware.WriteError(c, domain.Invalid("hero_id", "is required"))
	}
	r, err := h.lifecycle.ChooseProvider(c.Request().Context(), id, req.HeroID, uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": r})
}

func (h *Handler) Transition(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	r, err := h.lifecycle.Transition(c.Request().Context(), id, req.Status, uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": r})
}

// =========================
// ExpressInterest - hero offers to do the job
// =========================
func (h *Handler) ExpressInterest(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	view, err := h.acceptances.ExpressInterest(c.Request().Context(), id, uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"acceptance": view})
}

func (h *Handler) WithdrawInterest(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	if err := h.acceptances.WithdrawInterest(c.Request().Context(), id, uid); err != nil {
		return mware.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAcceptances(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := requestID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	list, err := h.acceptances.ListAcceptances(c.Request().Context(), id, uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"acceptances": list})
}
