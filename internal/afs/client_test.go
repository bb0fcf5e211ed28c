package afs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyIsSHA256Hex(t *testing.T) {
	got := APIKey("agency-secret")
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
	if got != APIKey("agency-secret") {
		t.Fatal("key derivation is not deterministic")
	}
	if got == APIKey("other-secret") {
		t.Fatal("different secrets produced the same key")
	}
}

func TestCreateBookingSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != APIKey("secret") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Booking{
			BookingReference: "ABC123",
			LastName:         req.LastName,
			Status:           "CONFIRMED",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	booking, err := c.CreateBooking(context.Background(), BookingRequest{
		Passenger: Passenger{LastName: "Miller", Email: "m@example.com"},
		FlightIDs: []string{"FL-1"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.BookingReference != "ABC123" || booking.LastName != "Miller" {
		t.Fatalf("unexpected booking: %+v", booking)
	}
}

func TestRetrieveBookingNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	if _, err := c.RetrieveBooking(context.Background(), "NOPE01", "Miller"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	for i := 0; i < 5; i++ {
		c.RetrieveBooking(context.Background(), "REF001", "Miller")
	}
	_, err := c.RetrieveBooking(context.Background(), "REF001", "Miller")
	if err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable once the circuit opened, got %v", err)
	}
}
