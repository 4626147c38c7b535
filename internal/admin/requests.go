package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

// GET /admin/requests?status=
func (h *Handler) ListRequests(c echo.Context) error {
	limit, offset := mware.Page(c)
	items, err := h.requests.ListAll(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}
