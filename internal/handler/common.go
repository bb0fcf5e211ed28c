package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/travel-booking/internal/service"
	"github.com/avelora/travel-booking/internal/utils"
)

const dateLayout = "2006-01-02"

// getUserID extracts the user_id claim JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// parseDate parses a YYYY-MM-DD value as a UTC calendar day.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// serviceError maps engine errors to HTTP responses. Unknown errors
// become an opaque 500 so internals never leak to clients.
func serviceError(c echo.Context, err error) error {
	var unavail *service.RoomUnavailableError
	switch {
	case errors.As(err, &unavail):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "room unavailable",
			"date":  unavail.Date.Format(dateLayout),
		})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrStayTooLong),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrNothingToBook),
		errors.Is(err, service.ErrPassengerRequired),
		errors.Is(err, service.ErrNothingToCancel):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, utils.ErrInvalidCardNumber),
		errors.Is(err, utils.ErrInvalidExpiry),
		errors.Is(err, utils.ErrCardExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrBookingCancelled),
		errors.Is(err, service.ErrAlreadyPaid):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrFlightNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrExternalBooking):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight booking failed"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
