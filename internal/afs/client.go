// Package afs is the HTTP client for the external Airline Flight
// System. Every call goes through a circuit breaker so a dead flight
// API fails fast instead of stalling booking checkouts.
package afs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/avelora/travel-booking/internal/metrics"
)

// ErrNotFound reports that the flight system has no record for the
// requested reference / last name pair.
var ErrNotFound = errors.New("afs: booking not found")

// ErrUnavailable reports that the circuit breaker is open and the call
// was never attempted.
var ErrUnavailable = errors.New("afs: flight system unavailable")

// Client talks to the flight system's agency API. The api key header
// is derived from the shared agency secret, matching what the flight
// system expects from registered agencies.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// APIKey derives the x-api-key header value from the agency secret.
func APIKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// New builds a Client against baseURL using the given agency secret.
func New(baseURL, secret string) *Client {
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(0).
		SetHeader("x-api-key", APIKey(secret))

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "afs",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.FlightCircuitState.Set(state)
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("flight system circuit state changed")
		},
	})

	return &Client{http: httpc, breaker: breaker}
}

func (c *Client) execute(op string, call func() (*resty.Response, error)) (*resty.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("afs: %s returned %d", op, resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		metrics.FlightAPIFailures.WithLabelValues(op).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	return out.(*resty.Response), nil
}

// SearchFlights queries one-way flights between two airports on a date
// (YYYY-MM-DD).
func (c *Client) SearchFlights(ctx context.Context, origin, destination, date string) ([]Flight, error) {
	var flights []Flight
	resp, err := c.execute("search", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"origin":      origin,
				"destination": destination,
				"date":        date,
			}).
			SetResult(&flights).
			Get("/api/flights/search")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("afs: search returned %d", resp.StatusCode())
	}
	return flights, nil
}

// CreateBooking books the given flights for a passenger and returns
// the flight system's booking record.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (Booking, error) {
	var booking Booking
	resp, err := c.execute("create", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&booking).
			Post("/api/bookings")
	})
	if err != nil {
		return Booking{}, err
	}
	if resp.IsError() {
		return Booking{}, fmt.Errorf("afs: create returned %d: %s", resp.StatusCode(), resp.String())
	}
	return booking, nil
}

// RetrieveBooking looks a booking up by reference and passenger last
// name. Returns ErrNotFound when the flight system has no match.
func (c *Client) RetrieveBooking(ctx context.Context, reference, lastName string) (Booking, error) {
	var booking Booking
	resp, err := c.execute("retrieve", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("lastName", lastName).
			SetResult(&booking).
			Get("/api/bookings/" + reference)
	})
	if err != nil {
		return Booking{}, err
	}
	if resp.StatusCode() == 404 {
		return Booking{}, ErrNotFound
	}
	if resp.IsError() {
		return Booking{}, fmt.Errorf("afs: retrieve returned %d", resp.StatusCode())
	}
	return booking, nil
}

// CancelBooking cancels a booking in the flight system. The checkout
// flow uses it to compensate when the hotel leg fails after the
// flights were already booked.
func (c *Client) CancelBooking(ctx context.Context, reference, lastName string) (Booking, error) {
	var booking Booking
	resp, err := c.execute("cancel", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("lastName", lastName).
			SetResult(&booking).
			Delete("/api/bookings/" + reference)
	})
	if err != nil {
		return Booking{}, err
	}
	if resp.StatusCode() == 404 {
		return Booking{}, ErrNotFound
	}
	if resp.IsError() {
		return Booking{}, fmt.Errorf("afs: cancel returned %d", resp.StatusCode())
	}
	return booking, nil
}
