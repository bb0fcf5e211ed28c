package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/queue"
	"github.com/avelora/travel-booking/internal/repository"
	"github.com/avelora/travel-booking/internal/service"
)

// ReservationHandler serves standalone hotel reservations. Reservations
// that belong to a composite booking are cancelled through the booking
// endpoints instead.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Repo         *repository.ReservationRepo
	BrokerURL    string
}

func NewReservationHandler(svc *service.ReservationService, repo *repository.ReservationRepo, brokerURL string) *ReservationHandler {
	if svc == nil || repo == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc, Repo: repo, BrokerURL: brokerURL}
}

type createReservationReq struct {
	RoomTypeID   uint64 `json:"roomTypeId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

type reservationResp struct {
	ID              uint64 `json:"id"`
	RoomTypeID      uint64 `json:"roomTypeId"`
	CheckInDate     string `json:"checkInDate"`
	CheckOutDate    string `json:"checkOutDate"`
	TotalPriceCents int64  `json:"totalPriceCents"`
	Status          string `json:"status"`
}

func toReservationResp(res model.Reservation) reservationResp {
	return reservationResp{
		ID: res.ID, RoomTypeID: res.RoomTypeID,
		CheckInDate:     res.CheckInDate.Format(dateLayout),
		CheckOutDate:    res.CheckOutDate.Format(dateLayout),
		TotalPriceCents: res.TotalPriceCents,
		Status:          string(res.Status),
	}
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil || req.RoomTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomTypeId required"})
	}
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkInDate must be YYYY-MM-DD"})
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkOutDate must be YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.Reserve(ctx, userID, req.RoomTypeID, checkIn, checkOut)
	if err != nil {
		return serviceError(c, err)
	}

	// Best effort; the reservation itself already committed.
	_ = queue.PublishReservationCreated(ctx, h.BrokerURL, queue.ReservationCreatedEvent{
		ReservationID:   res.ID,
		RoomTypeID:      res.RoomTypeID,
		UserID:          res.UserID,
		CheckInDate:     res.CheckInDate.Format(dateLayout),
		CheckOutDate:    res.CheckOutDate.Format(dateLayout),
		TotalPriceCents: res.TotalPriceCents,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// ListMine handles GET /v1/reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reservationResp, 0, len(list))
	for _, res := range list {
		out = append(out, toReservationResp(res))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Cancel handles DELETE /v1/reservations/:id. Allowed for the guest who
// holds the reservation or the owner of the hotel it belongs to; the
// service enforces that.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	res, loadErr := h.Repo.GetByID(ctx, id)

	if err := h.Reservations.Cancel(ctx, id, userID); err != nil {
		return serviceError(c, err)
	}

	if loadErr == nil {
		origin := "guest"
		if userID != res.UserID {
			origin = "owner"
		}
		// Best effort; the cancellation itself already committed.
		_ = queue.PublishReservationCancelled(ctx, h.BrokerURL, queue.ReservationCancelledEvent{
			ReservationID: res.ID,
			RoomTypeID:    res.RoomTypeID,
			UserID:        res.UserID,
			CheckInDate:   res.CheckInDate.Format(dateLayout),
			CheckOutDate:  res.CheckOutDate.Format(dateLayout),
			Origin:        origin,
			CancelledAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.NoContent(http.StatusNoContent)
}
