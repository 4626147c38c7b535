package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(l *Ledger) *Handler {
	return &Handler{ledger: l}
}

// Register mounts the hero-facing wallet routes on an authenticated group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/wallet", h.Balance)
	g.GET("/wallet/transactions", h.Transactions)
	g.PUT("/wallet/bank-details", h.UpdateBankDetails)
	g.POST("/wallet/withdrawals", h.InitWithdrawal)
	g.GET("/wallet/withdrawals", h.Withdrawals)
}

// Balance returns the caller's wallet and whether they may accept jobs.
func (h *Handler) Balance(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	w, err := h.ledger.GetWallet(c.Request().Context(), uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"wallet":          w,
		"can_accept_jobs": w.CanAcceptJobs(),
	})
}

func (h *Handler) Transactions(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	limit, offset := mware.Page(c)
	txs, err := h.ledger.ListTransactions(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

func (h *Handler) UpdateBankDetails(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	var req domain.BankDetailsUpdate
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	w, err := h.ledger.UpdateBankDetails(c.Request().Context(), uid, req)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wallet": w})
}

// InitWithdrawal queues a withdrawal for manual processing.
func (h *Handler) InitWithdrawal(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return mware.BadRequest(c)
	}
	wd, err := h.ledger.RequestWithdrawal(c.Request().Context(), uid, req.Amount)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"withdrawal": wd,
		"message":    "withdrawal requested, funds move once it is processed",
	})
}

func (h *Handler) Withdrawals(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	list, err := h.ledger.ListWithdrawals(c.Request().Context(), uid)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawals": list})
}
