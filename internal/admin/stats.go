// Package admin serves the operator views over requests. Wallet and
// withdrawal administration lives with the wallet ledger.
package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

type RequestLister interface {
	ListAll(ctx context.Context, status string, limit, offset int) ([]domain.ServiceRequest, error)
}

type Handler struct {
	store    port.Store
	requests RequestLister
}

func NewHandler(store port.Store, requests RequestLister) *Handler {
	return &Handler{store: store, requests: requests}
}

// Register mounts the views on a group already behind AdminGuard.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/stats", h.Stats)
	g.GET("/requests", h.ListRequests)
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	byStatus, err := h.store.Requests().CountByStatus(ctx)
	if err != nil {
		return mware.WriteError(c, err)
	}
	acceptances, err := h.store.Acceptances().Count(ctx)
	if err != nil {
		return mware.WriteError(c, err)
	}

	counts := echo.Map{}
	total := 0
	for _, st := range []domain.RequestStatus{domain.StatusPending, domain.StatusAssigned, domain.StatusActive, domain.StatusCompleted, domain.StatusCancelled} {
		counts[string(st)] = byStatus[st]
		total += byStatus[st]
	}

	return c.JSON(http.StatusOK, echo.Map{
		"requests":           total,
		"requests_by_status": counts,
		"acceptances":        acceptances,
	})
}
