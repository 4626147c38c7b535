package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// WriteError maps a domain error onto the HTTP response. Unknown errors are
// logged and hidden behind a generic 500.
func WriteError(c echo.Context, err error) error {
	var (
		ve *domain.ValidationError
		ib *domain.InsufficientBalanceError
	)
	switch {
	case errors.Is(err, domain.ErrRollbackFailure):
		log.Printf("[http][ERROR] %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error, the operation needs reconciliation"})
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, domain.ErrAuthorization):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &ib):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     ib.Error(),
			"balance":   ib.Balance,
			"available": ib.Available,
			"requested": ib.Requested,
		})
	}
	log.Printf("[http][ERROR] %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Unauthorized is returned by handlers when no caller identity is present.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized or invalid user"})
}

// BadRequest reports an unreadable request body.
func BadRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}
