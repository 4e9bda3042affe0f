package flights

import (
	"context"
	"errors"
	"log"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/txn"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, id int64, flight *domain.Flight) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) error
	Remove(ctx context.Context, id int64) error
}

type Coordinator interface {
	Execute(ctx context.Context, ops ...txn.Op) txn.Result
}

var (
	ErrNotCreated = errors.New("flight not created")
	ErrNotUpdated = errors.New("flight not updated")
	ErrNotDeleted = errors.New("flight not deleted")
	// ErrBadTransition: flight statuses only move forward.
	ErrBadTransition = errors.New("invalid flight status transition")
)

type FlightService struct {
	repo        repository.FlightRepository
	coordinator Coordinator
}

func NewFlightService(repo repository.FlightRepository, coordinator Coordinator) *FlightService {
	return &FlightService{repo: repo, coordinator: coordinator}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.repo.List(ctx)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.Status == "" {
		flight.Status = domain.FlightStatusNotStarted
	}
	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindCreate, Entity: repository.EntityFlight, Payload: flight})
	if !res.Succeeded() {
		log.Printf("create flight: %v", res.Err)
		return ErrNotCreated
	}
	return nil
}

func (s *FlightService) Update(ctx context.Context, id int64, flight *domain.Flight) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if flight.Status != current.Status && !current.Status.CanTransition(flight.Status) {
		return ErrBadTransition
	}

	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityFlight, Key: id, Payload: flight})
	if !res.Succeeded() {
		log.Printf("update flight %d: %v", id, res.Err)
		return ErrNotUpdated
	}
	return nil
}

// UpdateStatus moves the flight through its state machine. Backward or
// out-of-terminal transitions are rejected before any transaction opens.
func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransition(status) {
		return ErrBadTransition
	}

	res := s.coordinator.Execute(ctx, txn.Op{
		Kind:   txn.KindUpdateWithParams,
		Entity: repository.EntityFlight,
		Key:    id,
		Params: map[string]any{"status": string(status)},
	})
	if !res.Succeeded() {
		log.Printf("update flight %d status: %v", id, res.Err)
		return ErrNotUpdated
	}
	return nil
}

func (s *FlightService) Remove(ctx context.Context, id int64) error {
	res := s.coordinator.Execute(ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityFlight, Key: id})
	if !res.Succeeded() {
		if res.Class != txn.FailureNotFound {
			log.Printf("remove flight %d: %v", id, res.Err)
		}
		return ErrNotDeleted
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
