// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelora/travel-booking/internal/handler"
	"github.com/avelora/travel-booking/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Hotel        *handler.HotelHandler
	Availability *handler.AvailabilityHandler
	Reservation  *handler.ReservationHandler
	Booking      *handler.BookingHandler
	Cart         *handler.CartHandler
	Notification *handler.NotificationHandler
	RateLimit    echo.MiddlewareFunc
	JWTSecret    string
}

// Register mounts all routes. Public browsing needs no token; /v1/auth
// issues tokens; everything else requires a valid access token, with
// the owner endpoints additionally restricted to the OWNER role.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if h.RateLimit != nil {
		e.Use(h.RateLimit)
	}

	// Token issuance.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public browsing.
	e.GET("/v1/hotels", h.Hotel.ListHotels)
	e.GET("/v1/hotels/:id", h.Hotel.GetHotel)
	e.GET("/v1/hotels/:id/rooms", h.Hotel.ListRoomTypes)
	e.GET("/v1/rooms/:id/availability", h.Availability.GetAvailability)

	// Authenticated endpoints for both roles.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(h.JWTSecret))
	v1.Use(middleware.RequireRole("OWNER", "CUSTOMER"))

	v1.GET("/me", h.Auth.Me)

	v1.GET("/flights/search", h.Booking.SearchFlights)

	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations", h.Reservation.ListMine)
	v1.DELETE("/reservations/:id", h.Reservation.Cancel)

	v1.POST("/bookings/checkout", h.Booking.Checkout)
	v1.GET("/bookings", h.Booking.ListMine)
	v1.GET("/bookings/verify", h.Booking.Verify)
	v1.GET("/bookings/:id", h.Booking.Get)
	v1.POST("/bookings/:id/pay", h.Booking.Pay)
	v1.POST("/bookings/:id/pay-later", h.Booking.PayLater)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)

	v1.GET("/cart", h.Cart.Get)
	v1.PUT("/cart/room", h.Cart.SetRoom)
	v1.PUT("/cart/flights", h.Cart.SetFlights)
	v1.DELETE("/cart", h.Cart.Clear)

	v1.GET("/notifications", h.Notification.List)
	v1.GET("/notifications/unread-count", h.Notification.UnreadCount)
	v1.POST("/notifications/:id/read", h.Notification.MarkRead)

	// Owner-side management, including the capacity adjustments that can
	// forcibly cancel reservations.
	owner := e.Group("/v1/owner")
	owner.Use(middleware.JWTAuth(h.JWTSecret))
	owner.Use(middleware.RequireRole("OWNER"))

	owner.POST("/hotels", h.Hotel.CreateHotel)
	owner.GET("/hotels", h.Hotel.MyHotels)
	owner.POST("/hotels/:id/rooms", h.Hotel.CreateRoomType)
	owner.PUT("/rooms/:id", h.Hotel.UpdateRoomType)
	owner.PATCH("/rooms/:id/capacity", h.Availability.SetCapacity)
	owner.DELETE("/rooms/:id", h.Availability.DeleteRoomType)
}
