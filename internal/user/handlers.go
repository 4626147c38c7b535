package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{svc: s}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/heroes", h.RegisterHero)
	g.PATCH("/heroes/me", h.UpdateProfile)
	g.GET("/heroes/:id/profile", h.GetPublicProfile)
	g.GET("/me", h.Me)
}

// POST /heroes
func (h *Handler) RegisterHero(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	var req domain.HeroProfileInput
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	hero, w, err := h.svc.RegisterHero(c.Request().Context(), uid, req)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hero":    hero.Profile(),
		"wallet":  w,
		"message": "hero profile created",
	})
}

// PATCH /heroes/me
func (h *Handler) UpdateProfile(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	var req domain.HeroProfileUpdate
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	p, err := h.svc.UpdateHeroProfile(c.Request().Context(), uid, req)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hero": p})
}

// GET /heroes/:id/profile
func (h *Handler) GetPublicProfile(c echo.Context) error {
	p, err := h.svc.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /me
func (h *Handler) Me(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	me, err := h.svc.Me(c.Request().Context(), uid, mware.Role(c))
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, me)
}
