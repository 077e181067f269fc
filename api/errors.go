package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/flightdesk/internal/domain"
)

// sessionHeader carries the login token on every authenticated request.
const sessionHeader = "X-Session-Token"

func token(c *gin.Context) string {
	return c.GetHeader(sessionHeader)
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn), errors.Is(err, domain.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidUser):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSuchItinerary), errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyLoggedIn),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrSameDayConflict),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrTxConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
