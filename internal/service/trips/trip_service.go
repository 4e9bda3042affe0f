package trips

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/kafka"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/google/uuid"
)

type TripUseCase interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	AvailableSeats(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, trip *domain.Trip) error
	Update(ctx context.Context, id int64, trip *domain.Trip) error
	Remove(ctx context.Context, id int64) error
	ReserveSeats(ctx context.Context, input SeatRequest) error
	ReleaseSeats(ctx context.Context, input SeatRequest) error
}

type Coordinator interface {
	Execute(ctx context.Context, ops ...txn.Op) txn.Result
}

type Cache interface {
	GetTrips(ctx context.Context) ([]domain.Trip, error)
	SetTrips(ctx context.Context, trips []domain.Trip) error
	InvalidateTrips(ctx context.Context) error
	AcquireFlightHold(ctx context.Context, flightID int64, ttl time.Duration) (bool, error)
	ReleaseFlightHold(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

var (
	ErrNotCreated = errors.New("trip not created")
	ErrNotUpdated = errors.New("trip not updated")
	ErrNotDeleted = errors.New("trip not deleted")
	// ErrNoSeats: the reservation would drive available seats negative. The
	// transaction already rolled back, the flight counters are untouched.
	ErrNoSeats = errors.New("not enough available seats")
	// ErrFlightHeld: another booking currently holds the flight.
	ErrFlightHeld = errors.New("flight is being booked, retry")
)

type SeatRequest struct {
	TripID     int64
	Seats      int
	Identifier string
}

type TripService struct {
	repo        repository.TripRepository
	coordinator Coordinator
	cache       Cache
	producer    Producer
	topic       string
	holdTTL     time.Duration
}

func NewTripService(
	repo repository.TripRepository,
	coordinator Coordinator,
	cache Cache,
	producer Producer,
	topic string,
	holdTTL time.Duration,
) *TripService {
	return &TripService{
		repo:        repo,
		coordinator: coordinator,
		cache:       cache,
		producer:    producer,
		topic:       topic,
		holdTTL:     holdTTL,
	}
}

func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTrips(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTrips(ctx, trips)
	}
	return trips, nil
}

func (s *TripService) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TripService) AvailableSeats(ctx context.Context, id int64) (int, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return trip.AvailableSeats(), nil
}

func (s *TripService) Create(ctx context.Context, trip *domain.Trip) error {
	if trip.Status == "" {
		trip.Status = domain.FlightStatusNotStarted
	}
	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindCreate, Entity: repository.EntityTrip, Payload: trip})
	if !res.Succeeded() {
		log.Printf("create trip: %v", res.Err)
		return ErrNotCreated
	}
	s.invalidate(ctx)
	return nil
}

func (s *TripService) Update(ctx context.Context, id int64, trip *domain.Trip) error {
	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityTrip, Key: id, Payload: trip})
	if !res.Succeeded() {
		log.Printf("update trip %d: %v", id, res.Err)
		return ErrNotUpdated
	}
	s.invalidate(ctx)
	return nil
}

func (s *TripService) Remove(ctx context.Context, id int64) error {
	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityTrip, Key: id})
	if !res.Succeeded() {
		if res.Class == txn.FailureNotFound {
			return ErrNotDeleted
		}
		log.Printf("remove trip %d: %v", id, res.Err)
		return ErrNotDeleted
	}
	s.invalidate(ctx)
	return nil
}

// ReserveSeats books seats on the trip's flight. The capacity check and the
// counter increment are one conditional UPDATE inside the coordinator
// transaction, so concurrent reservations serialize on the flight row and an
// oversell rolls back with nothing written. The redis hold only narrows the
// race window, it is not the correctness mechanism.
func (s *TripService) ReserveSeats(ctx context.Context, input SeatRequest) error {
	trip, err := s.repo.GetByID(ctx, input.TripID)
	if err != nil {
		return err
	}

	held := false
	if s.cache != nil {
		ok, err := s.cache.AcquireFlightHold(ctx, trip.FlightID, s.holdTTL)
		if err != nil {
			return err
		}
		if !ok {
			return ErrFlightHeld
		}
		held = true
	}
	defer func() {
		if held {
			_ = s.cache.ReleaseFlightHold(ctx, trip.FlightID)
		}
	}()

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:   txn.KindUpdateWithParams,
		Entity: repository.EntityFlight,
		Key:    trip.FlightID,
		Params: map[string]any{repository.ParamReserveSeats: input.Seats},
	})
	if !res.Succeeded() {
		if res.Class == txn.FailureConstraint {
			return ErrNoSeats
		}
		return res.Err
	}

	reference := uuid.NewString()
	log.Printf("reserved %d seats on flight %d, reservation %s", input.Seats, trip.FlightID, reference)

	s.invalidate(ctx)
	s.publish(ctx, "seats_reserved", reference, trip, input)
	return nil
}

// ReleaseSeats is the inverse adjustment; the executor floors the counter at
// zero.
func (s *TripService) ReleaseSeats(ctx context.Context, input SeatRequest) error {
	trip, err := s.repo.GetByID(ctx, input.TripID)
	if err != nil {
		return err
	}

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:   txn.KindUpdateWithParams,
		Entity: repository.EntityFlight,
		Key:    trip.FlightID,
		Params: map[string]any{repository.ParamReleaseSeats: input.Seats},
	})
	if !res.Succeeded() {
		if res.Class == txn.FailureConstraint {
			return ErrNoSeats
		}
		return res.Err
	}

	s.invalidate(ctx)
	s.publish(ctx, "seats_released", "", trip, input)
	return nil
}

func (s *TripService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTrips(ctx)
	}
}

func (s *TripService) publish(ctx context.Context, eventType, reference string, trip *domain.Trip, input SeatRequest) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		Reference:  reference,
		TripID:     trip.ID,
		FlightID:   trip.FlightID,
		Seats:      input.Seats,
		Identifier: input.Identifier,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, input.Identifier, event); err != nil {
		log.Printf("publish %s event for trip %d: %v", eventType, trip.ID, err)
	}
}

var _ TripUseCase = (*TripService)(nil)
