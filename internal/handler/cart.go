package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/repository"
)

// CartHandler manages the single pre-booking cart item each user has.
type CartHandler struct {
	Cart  *repository.CartRepo
	Rooms *repository.RoomTypeRepo
}

func NewCartHandler(cart *repository.CartRepo, rooms *repository.RoomTypeRepo) *CartHandler {
	if cart == nil || rooms == nil {
		panic("nil repository passed to NewCartHandler")
	}
	return &CartHandler{Cart: cart, Rooms: rooms}
}

type cartRoomResp struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	PricePerNightCents int64  `json:"pricePerNightCents"`
}

type cartResp struct {
	RoomTypeID        *uint64       `json:"roomTypeId,omitempty"`
	Room              *cartRoomResp `json:"room,omitempty"`
	CheckInDate       *string       `json:"checkInDate,omitempty"`
	CheckOutDate      *string       `json:"checkOutDate,omitempty"`
	OutboundFlightIDs []string      `json:"outboundFlightIds,omitempty"`
	ReturnFlightIDs   []string      `json:"returnFlightIds,omitempty"`
}

func toCartResp(item model.CartItem) cartResp {
	out := cartResp{
		RoomTypeID:        item.RoomTypeID,
		OutboundFlightIDs: item.OutboundFlightIDs,
		ReturnFlightIDs:   item.ReturnFlightIDs,
	}
	if item.CheckInDate != nil {
		s := item.CheckInDate.Format(dateLayout)
		out.CheckInDate = &s
	}
	if item.CheckOutDate != nil {
		s := item.CheckOutDate.Format(dateLayout)
		out.CheckOutDate = &s
	}
	return out
}

// Get handles GET /v1/cart. An empty cart is a 200 with empty fields so
// clients need no special case.
func (h *CartHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	item, found, err := h.Cart.Get(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !found {
		return c.JSON(http.StatusOK, cartResp{})
	}

	resp := toCartResp(item)
	if item.RoomTypeID != nil {
		// The room may have been deleted since it was added; the stale
		// selection is still shown, it just cannot hydrate.
		if rt, err := h.Rooms.GetByID(ctx, *item.RoomTypeID); err == nil {
			resp.Room = &cartRoomResp{ID: rt.ID, Name: rt.Name, PricePerNightCents: rt.PricePerNightCents}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type setCartRoomReq struct {
	RoomTypeID   uint64 `json:"roomTypeId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

// SetRoom handles PUT /v1/cart/room. Availability is only checked at
// checkout; the cart holds intent, not inventory.
func (h *CartHandler) SetRoom(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req setCartRoomReq
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
	if !checkIn.Before(checkOut) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkOutDate must be after checkInDate"})
	}

	if err := h.Cart.SetRoom(c.Request().Context(), userID, req.RoomTypeID, checkIn, checkOut); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

type setCartFlightsReq struct {
	OutboundFlightIDs []string `json:"outboundFlightIds"`
	ReturnFlightIDs   []string `json:"returnFlightIds"`
}

// SetFlights handles PUT /v1/cart/flights.
func (h *CartHandler) SetFlights(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req setCartFlightsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.OutboundFlightIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "outboundFlightIds required"})
	}

	if err := h.Cart.SetFlights(c.Request().Context(), userID, req.OutboundFlightIDs, req.ReturnFlightIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Cart.Clear(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
