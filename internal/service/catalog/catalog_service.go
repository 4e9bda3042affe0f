package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/txn"
)

// Thin reference-data services. They own no invariants of their own; their
// job is to route every mutation through the coordinator and translate the
// outcome token, exactly like the bigger services do.

type Coordinator interface {
	Execute(ctx context.Context, ops ...txn.Op) txn.Result
}

// ErrNotFound is returned for missing rows on update/delete paths. Repeated
// removal of the same id keeps returning this same error.
var ErrNotFound = errors.New("not found")

func run(coordinator Coordinator, ctx context.Context, op txn.Op, verb string) error {
	res := coordinator.Execute(ctx, op)
	if res.Succeeded() {
		return nil
	}
	if res.Class == txn.FailureNotFound {
		return ErrNotFound
	}
	log.Printf("%s %s: %v", verb, op.Entity, res.Err)
	return fmt.Errorf("%s not %sd", op.Entity, verb)
}

type AirportService struct {
	repo        repository.AirportRepository
	coordinator Coordinator
}

func NewAirportService(repo repository.AirportRepository, coordinator Coordinator) *AirportService {
	return &AirportService{repo: repo, coordinator: coordinator}
}

func (s *AirportService) List(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.List(ctx)
}

func (s *AirportService) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AirportService) Create(ctx context.Context, a *domain.Airport) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindCreate, Entity: repository.EntityAirport, Payload: a}, "create")
}

func (s *AirportService) Update(ctx context.Context, id int64, a *domain.Airport) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityAirport, Key: id, Payload: a}, "update")
}

func (s *AirportService) Remove(ctx context.Context, id int64) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityAirport, Key: id}, "delete")
}

type PilotService struct {
	repo        repository.PilotRepository
	coordinator Coordinator
}

func NewPilotService(repo repository.PilotRepository, coordinator Coordinator) *PilotService {
	return &PilotService{repo: repo, coordinator: coordinator}
}

func (s *PilotService) List(ctx context.Context) ([]domain.Pilot, error) {
	return s.repo.List(ctx)
}

func (s *PilotService) GetByID(ctx context.Context, id int64) (*domain.Pilot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PilotService) Create(ctx context.Context, p *domain.Pilot) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindCreate, Entity: repository.EntityPilot, Payload: p}, "create")
}

func (s *PilotService) Update(ctx context.Context, id int64, p *domain.Pilot) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityPilot, Key: id, Payload: p}, "update")
}

func (s *PilotService) Remove(ctx context.Context, id int64) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityPilot, Key: id}, "delete")
}

type FareService struct {
	repo        repository.FareRepository
	coordinator Coordinator
}

func NewFareService(repo repository.FareRepository, coordinator Coordinator) *FareService {
	return &FareService{repo: repo, coordinator: coordinator}
}

func (s *FareService) ListByTrip(ctx context.Context, tripID int64) ([]domain.Fare, error) {
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *FareService) SearchByName(ctx context.Context, name string) ([]domain.Fare, error) {
	return s.repo.SearchByName(ctx, name)
}

func (s *FareService) GetByID(ctx context.Context, id int64) (*domain.Fare, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FareService) Create(ctx context.Context, f *domain.Fare) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindCreate, Entity: repository.EntityFare, Payload: f}, "create")
}

func (s *FareService) Update(ctx context.Context, id int64, f *domain.Fare) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityFare, Key: id, Payload: f}, "update")
}

func (s *FareService) Remove(ctx context.Context, id int64) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityFare, Key: id}, "delete")
}

type CardService struct {
	repo        repository.CardRepository
	coordinator Coordinator
}

func NewCardService(repo repository.CardRepository, coordinator Coordinator) *CardService {
	return &CardService{repo: repo, coordinator: coordinator}
}

func (s *CardService) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CardService) Update(ctx context.Context, id int64, c *domain.Card) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindUpdate, Entity: repository.EntityCard, Key: id, Payload: c}, "update")
}

func (s *CardService) Remove(ctx context.Context, id int64) error {
	return run(s.coordinator, ctx, txn.Op{Kind: txn.KindDelete, Entity: repository.EntityCard, Key: id}, "delete")
}
