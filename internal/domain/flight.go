package domain

import "time"

type FlightStatus string

const (
	FlightStatusNotStarted FlightStatus = "NOT_STARTED"
	FlightStatusInProgress FlightStatus = "IN_PROGRESS"
	FlightStatusFinished   FlightStatus = "FINISHED"
	FlightStatusCancelled  FlightStatus = "CANCELLED"
)

// CanTransition reports whether a flight may move from s to next.
// Transitions only go forward; FINISHED and CANCELLED are terminal.
func (s FlightStatus) CanTransition(next FlightStatus) bool {
	switch s {
	case FlightStatusNotStarted:
		return next == FlightStatusInProgress || next == FlightStatusCancelled
	case FlightStatusInProgress:
		return next == FlightStatusFinished || next == FlightStatusCancelled
	default:
		return false
	}
}

type Aircraft struct {
	ID        int64
	Model     string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pilot struct {
	ID        int64
	Name      string
	License   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Crew struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Flight struct {
	ID                 int64
	AircraftID         int64
	PilotID            int64
	CopilotID          int64
	CrewID             int64
	TotalPassengers    int
	ReservedPassengers int
	Status             FlightStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined at read time, non-owning.
	Aircraft *Aircraft
}
