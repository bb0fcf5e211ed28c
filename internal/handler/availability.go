package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/travel-booking/internal/repository"
	"github.com/avelora/travel-booking/internal/service"
)

// AvailabilityHandler exposes the per-day inventory of a room type and
// the owner's capacity management, which can trigger forced
// cancellations through the reconciler.
type AvailabilityHandler struct {
	Rooms        *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
	Capacity     *service.CapacityService
}

func NewAvailabilityHandler(rooms *repository.RoomTypeRepo, availability *repository.AvailabilityRepo, capacity *service.CapacityService) *AvailabilityHandler {
	if rooms == nil || availability == nil || capacity == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Rooms: rooms, Availability: availability, Capacity: capacity}
}

type availabilityDayResp struct {
	Date           string `json:"date"`
	AvailableRooms int    `json:"availableRooms"`
}

// GetAvailability handles GET /v1/rooms/:id/availability?from=&to=.
// The ledger is sparse; days without a stored row are reported at the
// room's full capacity.
func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}
	if to.Sub(from) > 366*24*time.Hour {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "range too large"})
	}

	ctx := c.Request().Context()
	rt, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rows, err := h.Availability.Range(ctx, roomID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	stored := make(map[string]int, len(rows))
	for _, d := range rows {
		stored[d.Date.Format(dateLayout)] = d.AvailableRooms
	}
	days := make([]availabilityDayResp, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		avail, ok := stored[key]
		if !ok {
			avail = rt.TotalRooms
		}
		days = append(days, availabilityDayResp{Date: key, AvailableRooms: avail})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"roomTypeId": roomID,
		"totalRooms": rt.TotalRooms,
		"days":       days,
	})
}

type setCapacityReq struct {
	TotalRooms int `json:"totalRooms"`
}

type cancelledReservationResp struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"userId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

// SetCapacity handles PATCH /v1/owner/rooms/:id/capacity. Lowering
// capacity below existing bookings forcibly cancels the latest-starting
// reservations; the response lists them.
func (h *AvailabilityHandler) SetCapacity(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req setCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	cancelled, err := h.Capacity.AdjustCapacity(c.Request().Context(), ownerID, roomID, req.TotalRooms)
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]cancelledReservationResp, 0, len(cancelled))
	for _, res := range cancelled {
		out = append(out, cancelledReservationResp{
			ID: res.ID, UserID: res.UserID,
			CheckInDate:  res.CheckInDate.Format(dateLayout),
			CheckOutDate: res.CheckOutDate.Format(dateLayout),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totalRooms":            req.TotalRooms,
		"cancelledReservations": out,
	})
}

// DeleteRoomType handles DELETE /v1/owner/rooms/:id. Active
// reservations are cancelled and their guests notified.
func (h *AvailabilityHandler) DeleteRoomType(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	cancelled, err := h.Capacity.DeleteRoomType(c.Request().Context(), ownerID, roomID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelledReservations": len(cancelled)})
}
