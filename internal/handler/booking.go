package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/avelora/travel-booking/internal/afs"
	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/queue"
	"github.com/avelora/travel-booking/internal/repository"
	"github.com/avelora/travel-booking/internal/service"
	"github.com/avelora/travel-booking/internal/utils"
)

// BookingHandler serves composite bookings: checkout, payment, leg
// cancellation and flight search against the external flight system.
type BookingHandler struct {
	Bookings  *service.BookingService
	Repo      *repository.BookingRepo
	Cart      *repository.CartRepo
	Users     *repository.UserRepo
	Flights   *afs.Client
	BrokerURL string
}

func NewBookingHandler(svc *service.BookingService, repo *repository.BookingRepo, cart *repository.CartRepo, users *repository.UserRepo, flights *afs.Client, brokerURL string) *BookingHandler {
	if svc == nil || repo == nil || cart == nil || users == nil || flights == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: svc, Repo: repo, Cart: cart, Users: users, Flights: flights, BrokerURL: brokerURL}
}

type bookingResp struct {
	ID              uint64  `json:"id"`
	Reference       string  `json:"reference"`
	ReservationID   *uint64 `json:"reservationId,omitempty"`
	FlightReference *string `json:"flightReference,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID: b.ID, Reference: b.Reference,
		ReservationID: b.ReservationID, FlightReference: b.FlightReference,
		Status: b.Status, CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SearchFlights handles GET /v1/flights/search?origin=&destination=&date=,
// proxying the external flight system so clients never talk to it
// directly.
func (h *BookingHandler) SearchFlights(c echo.Context) error {
	origin := strings.ToUpper(strings.TrimSpace(c.QueryParam("origin")))
	destination := strings.ToUpper(strings.TrimSpace(c.QueryParam("destination")))
	date := strings.TrimSpace(c.QueryParam("date"))
	if origin == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination required"})
	}
	if date != "" {
		if _, err := parseDate(date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	}

	flights, err := h.Flights.SearchFlights(c.Request().Context(), origin, destination, date)
	if err != nil {
		if errors.Is(err, afs.ErrUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "flight system unavailable"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

type checkoutReq struct {
	FromCart     bool     `json:"fromCart"`
	RoomTypeID   uint64   `json:"roomTypeId"`
	CheckInDate  string   `json:"checkInDate"`
	CheckOutDate string   `json:"checkOutDate"`
	FlightIDs    []string `json:"flightIds"`
	Passport     string   `json:"passportNumber"`
}

// Checkout handles POST /v1/bookings/checkout. The legs come either
// from the request body or, with fromCart, from the user's cart; the
// cart is cleared only after the booking committed.
func (h *BookingHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	in := service.CheckoutInput{
		RoomTypeID: req.RoomTypeID,
		FlightIDs:  req.FlightIDs,
		Passenger: afs.Passenger{
			Email:          user.Email,
			FirstName:      user.FirstName,
			LastName:       user.LastName,
			PassportNumber: strings.TrimSpace(req.Passport),
		},
	}
	if req.RoomTypeID != 0 {
		if in.CheckInDate, err = parseDate(req.CheckInDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkInDate must be YYYY-MM-DD"})
		}
		if in.CheckOutDate, err = parseDate(req.CheckOutDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkOutDate must be YYYY-MM-DD"})
		}
	}

	if req.FromCart {
		item, found, err := h.Cart.Get(ctx, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !found {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		}
		if item.RoomTypeID != nil && item.CheckInDate != nil && item.CheckOutDate != nil {
			in.RoomTypeID = *item.RoomTypeID
			in.CheckInDate = *item.CheckInDate
			in.CheckOutDate = *item.CheckOutDate
		}
		in.FlightIDs = append(append([]string{}, item.OutboundFlightIDs...), item.ReturnFlightIDs...)
	}

	b, err := h.Bookings.Checkout(ctx, user, in)
	if err != nil {
		return serviceError(c, err)
	}

	if req.FromCart {
		if err := h.Cart.Clear(ctx, userID); err != nil {
			// The booking exists; a stale cart is recoverable.
			log.WithError(err).WithField("user_id", userID).Warn("cart clear failed after checkout")
		}
	}
	event := queue.BookingCreatedEvent{
		BookingID: b.ID,
		Reference: b.Reference,
		UserID:    b.UserID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if b.ReservationID != nil {
		event.ReservationID = *b.ReservationID
		event.RoomTypeID = in.RoomTypeID
		event.CheckInDate = in.CheckInDate.Format(dateLayout)
		event.CheckOutDate = in.CheckOutDate.Format(dateLayout)
	}
	if b.FlightReference != nil {
		event.FlightReference = *b.FlightReference
	}
	_ = queue.PublishBookingCreated(ctx, h.BrokerURL, event)

	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// ListMine handles GET /v1/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get handles GET /v1/bookings/:id. With ?includeFlight=true the live
// flight details are fetched from the external system; a flight system
// outage degrades the response instead of failing it.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	b, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	resp := echo.Map{"booking": toBookingResp(b)}
	if c.QueryParam("includeFlight") == "true" && b.FlightReference != nil && b.LastName != nil {
		fb, err := h.Flights.RetrieveBooking(ctx, *b.FlightReference, *b.LastName)
		if err != nil {
			resp["flight"] = nil
			resp["flightError"] = "flight details unavailable"
		} else {
			resp["flight"] = fb
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Verify handles GET /v1/bookings/verify?reference=. The booking is
// looked up by its external flight reference and the live flight
// statuses are fetched from the flight system.
func (h *BookingHandler) Verify(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref := strings.TrimSpace(c.QueryParam("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
	}

	ctx := c.Request().Context()
	b, err := h.Repo.GetByFlightReference(ctx, ref)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if b.LastName == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no passenger on booking"})
	}

	fb, err := h.Flights.RetrieveBooking(ctx, ref, *b.LastName)
	if err != nil {
		if errors.Is(err, afs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight booking not found"})
		}
		if errors.Is(err, afs.ErrUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "flight system unavailable"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking": toBookingResp(b),
		"status":  fb.Status,
		"flights": fb.Flights,
	})
}

type payReq struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
}

// Pay handles POST /v1/bookings/:id/pay.
func (h *BookingHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	b, err := h.Bookings.Pay(c.Request().Context(), id, userID, utils.Card{
		Number: strings.TrimSpace(req.CardNumber),
		Expiry: strings.TrimSpace(req.ExpiryDate),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// PayLater handles POST /v1/bookings/:id/pay-later.
func (h *BookingHandler) PayLater(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.PayLater(c.Request().Context(), id, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

type cancelBookingReq struct {
	Flight bool `json:"flight"`
	Hotel  bool `json:"hotel"`
}

// Cancel handles POST /v1/bookings/:id/cancel, cancelling one or both
// legs. Omitting both flags cancels everything the booking still has.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req cancelBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !req.Flight && !req.Hotel {
		req.Flight, req.Hotel = true, true
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pre, preErr := h.Repo.GetByID(ctx, id)

	b, err := h.Bookings.Cancel(ctx, id, userID, service.CancelFlags{Flight: req.Flight, Hotel: req.Hotel}, user.LastName)
	if err != nil {
		return serviceError(c, err)
	}

	if req.Hotel && preErr == nil && pre.ReservationID != nil && b.ReservationID == nil {
		_ = queue.PublishReservationCancelled(ctx, h.BrokerURL, queue.ReservationCancelledEvent{
			ReservationID: *pre.ReservationID,
			UserID:        userID,
			Origin:        "guest",
			CancelledAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
