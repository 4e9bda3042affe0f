package domain

import "time"

type FareKind string

const (
	FareKindDistance FareKind = "DISTANCE"
	FareKindClass    FareKind = "CLASS"
)

type Fare struct {
	ID         int64
	TripID     int64
	Kind       FareKind
	Name       string
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Airport struct {
	ID         int64
	Name       string
	Code       string
	LocationID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Location struct {
	ID        int64
	City      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Trip struct {
	ID            int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        FlightStatus
	OriginID      int64
	DestinationID int64
	FlightID      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined at read time, non-owning.
	Origin      *Airport
	Destination *Airport
	Flight      *Flight
	Fares       []Fare
}

// AvailableSeats computes the seats still sellable on the trip's flight.
// The booking path must never let this go negative.
func (t Trip) AvailableSeats() int {
	if t.Flight == nil || t.Flight.Aircraft == nil {
		return 0
	}
	return t.Flight.Aircraft.Capacity - t.Flight.ReservedPassengers - t.Flight.TotalPassengers
}
