package afs

// Passenger identifies the traveller an external flight booking is
// made for. The flight system keys retrieval on LastName plus the
// booking reference, so LastName must match exactly on later lookups.
type Passenger struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PassportNumber string `json:"passportNumber"`
}

// BookingRequest is the payload for creating a booking in the flight
// system.
type BookingRequest struct {
	Passenger
	FlightIDs []string `json:"flightIds"`
}

// Airline is the carrier operating a flight.
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Airport describes an endpoint of a flight leg.
type Airport struct {
	City    string `json:"city"`
	Code    string `json:"code"`
	Country string `json:"country"`
	Name    string `json:"name"`
}

// Flight is one leg inside an external booking.
type Flight struct {
	ID             string  `json:"id"`
	FlightNumber   string  `json:"flightNumber"`
	Airline        Airline `json:"airline"`
	Origin         Airport `json:"origin"`
	Destination    Airport `json:"destination"`
	DepartureTime  string  `json:"departureTime"`
	ArrivalTime    string  `json:"arrivalTime"`
	DurationMin    int     `json:"duration"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	AvailableSeats int     `json:"availableSeats"`
	Status         string  `json:"status"`
}

// Booking mirrors the flight system's booking resource. Only the
// reference and the flight statuses are consumed by this service; the
// rest is passed through to clients.
type Booking struct {
	AgencyID         string   `json:"agencyId"`
	BookingReference string   `json:"bookingReference"`
	CreatedAt        string   `json:"createdAt"`
	Email            string   `json:"email"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	PassportNumber   string   `json:"passportNumber"`
	TicketNumber     string   `json:"ticketNumber"`
	Status           string   `json:"status"`
	Flights          []Flight `json:"flights"`
}
