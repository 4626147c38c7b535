package wallet

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

// RegisterAdmin mounts withdrawal processing and wallet administration on
// the admin group.
func (h *Handler) RegisterAdmin(g *echo.Group) {
	g.GET("/wallets", h.AdminListWallets)
	g.GET("/withdrawals", h.AdminListWithdrawals)
	g.POST("/withdrawals/:id/complete", h.AdminCompleteWithdrawal)
	g.POST("/withdrawals/:id/fail", h.AdminFailWithdrawal)
	g.POST("/heroes/:id/verify", h.AdminVerifyHero)
	g.POST("/heroes/:id/fee-topup", h.AdminFeeTopUp)
}

func (h *Handler) AdminListWallets(c echo.Context) error {
	limit, offset := mware.Page(c)
	list, err := h.ledger.ListWallets(c.Request().Context(), limit, offset)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wallets": list})
}

// AdminListWithdrawals lists withdrawals, pending ones unless ?status= says otherwise.
func (h *Handler) AdminListWithdrawals(c echo.Context) error {
	status := domain.TxStatus(c.QueryParam("status"))
	if status == "" {
		status = domain.TxPending
	}
	limit, offset := mware.Page(c)
	list, err := h.ledger.ListWithdrawalsByStatus(c.Request().Context(), status, limit, offset)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawals": list})
}

func withdrawalID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("id", "must be a uuid")
	}
	return id, nil
}

func (h *Handler) AdminCompleteWithdrawal(c echo.Context) error {
	id, err := withdrawalID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	wd, err := h.ledger.CompleteWithdrawal(c.Request().Context(), id)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawal": wd})
}

func (h *Handler) AdminFailWithdrawal(c echo.Context) error {
	id, err := withdrawalID(c)
	if err != nil {
		return mware.WriteError(c, err)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	wd, err := h.ledger.FailWithdrawal(c.Request().Context(), id, req.Reason)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawal": wd})
}

func (h *Handler) AdminVerifyHero(c echo.Context) error {
	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}
	w, err := h.ledger.SetIdentityVerified(c.Request().Context(), c.Param("id"), verified)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wallet": w})
}

// AdminFeeTopUp books a confirmed external fee payment.
func (h *Handler) AdminFeeTopUp(c echo.Context) error {
	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Reference string          `json:"reference"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	t, err := h.ledger.RecordFeeTopUp(c.Request().Context(), c.Param("id"), req.Amount, req.Reference)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"transaction": t})
}
