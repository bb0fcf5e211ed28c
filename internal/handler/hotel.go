package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/repository"
)

// HotelHandler serves public hotel browsing and owner-side hotel and
// room type management. Capacity changes are not handled here; they go
// through the availability handler so the reconciler can run.
type HotelHandler struct {
	Hotels *repository.HotelRepo
	Rooms  *repository.RoomTypeRepo
}

func NewHotelHandler(hotels *repository.HotelRepo, rooms *repository.RoomTypeRepo) *HotelHandler {
	if hotels == nil || rooms == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{Hotels: hotels, Rooms: rooms}
}

type hotelResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	StarRating int    `json:"starRating"`
}

type roomTypeResp struct {
	ID                 uint64 `json:"id"`
	HotelID            uint64 `json:"hotelId"`
	Name               string `json:"name"`
	Amenities          string `json:"amenities"`
	PricePerNightCents int64  `json:"pricePerNightCents"`
	TotalRooms         int    `json:"totalRooms"`
	Beds               int    `json:"beds"`
}

func toHotelResp(h model.Hotel) hotelResp {
	return hotelResp{ID: h.ID, Name: h.Name, Address: h.Address, City: h.City, StarRating: int(h.StarRating)}
}

func toRoomTypeResp(rt model.RoomType) roomTypeResp {
	return roomTypeResp{
		ID: rt.ID, HotelID: rt.HotelID, Name: rt.Name, Amenities: rt.Amenities,
		PricePerNightCents: rt.PricePerNightCents, TotalRooms: rt.TotalRooms, Beds: rt.Beds,
	}
}

// ListHotels handles GET /v1/hotels?city= for public browsing.
func (h *HotelHandler) ListHotels(c echo.Context) error {
	hotels, err := h.Hotels.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("city")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]hotelResp, 0, len(hotels))
	for _, hotel := range hotels {
		out = append(out, toHotelResp(hotel))
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": out})
}

// GetHotel handles GET /v1/hotels/:id.
func (h *HotelHandler) GetHotel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	hotel, err := h.Hotels.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toHotelResp(hotel))
}

// ListRoomTypes handles GET /v1/hotels/:id/rooms.
func (h *HotelHandler) ListRoomTypes(c echo.Context) error {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	rooms, err := h.Rooms.ListByHotel(c.Request().Context(), hotelID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]roomTypeResp, 0, len(rooms))
	for _, rt := range rooms {
		out = append(out, toRoomTypeResp(rt))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// ----- owner endpoints -----

type createHotelReq struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	StarRating int    `json:"starRating"`
}

// CreateHotel handles POST /v1/owner/hotels.
func (h *HotelHandler) CreateHotel(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createHotelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.StarRating < 0 || req.StarRating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starRating must be 0-5"})
	}

	hotel := model.Hotel{
		OwnerID: ownerID, Name: req.Name, Address: strings.TrimSpace(req.Address),
		City: strings.TrimSpace(req.City), StarRating: uint8(req.StarRating),
	}
	if err := h.Hotels.Create(c.Request().Context(), &hotel); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hotel failed"})
	}
	return c.JSON(http.StatusCreated, toHotelResp(hotel))
}

// MyHotels handles GET /v1/owner/hotels.
func (h *HotelHandler) MyHotels(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotels, err := h.Hotels.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]hotelResp, 0, len(hotels))
	for _, hotel := range hotels {
		out = append(out, toHotelResp(hotel))
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": out})
}

type createRoomTypeReq struct {
	Name               string `json:"name"`
	Amenities          string `json:"amenities"`
	PricePerNightCents int64  `json:"pricePerNightCents"`
	TotalRooms         int    `json:"totalRooms"`
	Beds               int    `json:"beds"`
}

// CreateRoomType handles POST /v1/owner/hotels/:id/rooms.
func (h *HotelHandler) CreateRoomType(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	hotel, err := h.Hotels.GetByID(c.Request().Context(), hotelID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if hotel.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req createRoomTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.PricePerNightCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricePerNightCents must be positive"})
	}
	if req.TotalRooms < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalRooms must be at least 1"})
	}

	rt := model.RoomType{
		HotelID: hotelID, Name: req.Name, Amenities: strings.TrimSpace(req.Amenities),
		PricePerNightCents: req.PricePerNightCents, TotalRooms: req.TotalRooms, Beds: req.Beds,
	}
	if err := h.Rooms.Create(c.Request().Context(), &rt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room type failed"})
	}
	return c.JSON(http.StatusCreated, toRoomTypeResp(rt))
}

type updateRoomTypeReq struct {
	Name               string `json:"name"`
	Amenities          string `json:"amenities"`
	PricePerNightCents int64  `json:"pricePerNightCents"`
	Beds               int    `json:"beds"`
}

// UpdateRoomType handles PUT /v1/owner/rooms/:id. Descriptive fields
// only; capacity changes go through the availability handler.
func (h *HotelHandler) UpdateRoomType(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	rt, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	hotel, err := h.Hotels.GetByID(ctx, rt.HotelID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if hotel.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req updateRoomTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		rt.Name = name
	}
	if req.Amenities != "" {
		rt.Amenities = strings.TrimSpace(req.Amenities)
	}
	if req.PricePerNightCents > 0 {
		rt.PricePerNightCents = req.PricePerNightCents
	}
	if req.Beds > 0 {
		rt.Beds = req.Beds
	}
	if err := h.Rooms.Update(ctx, &rt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toRoomTypeResp(rt))
}
