package flights

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Execute(ctx context.Context, ops ...txn.Op) txn.Result {
	args := m.Called(ctx, ops)
	return args.Get(0).(txn.Result)
}

func TestCreate_DefaultsStatus(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewFlightService(new(MockFlightRepository), coordinator)

	coordinator.On("Execute", mock.Anything, mock.MatchedBy(func(ops []txn.Op) bool {
		flight := ops[0].Payload.(*domain.Flight)
		return ops[0].Kind == txn.KindCreate && flight.Status == domain.FlightStatusNotStarted
	})).Return(txn.Result{Outcome: txn.OutcomeSuccess})

	err := svc.Create(context.Background(), &domain.Flight{AircraftID: 1, PilotID: 2})

	assert.NoError(t, err)
	coordinator.AssertExpectations(t)
}

func TestCreate_CoordinatorFailure(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewFlightService(new(MockFlightRepository), coordinator)

	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureConstraint, Err: errors.New("fk violation")})

	err := svc.Create(context.Background(), &domain.Flight{AircraftID: 999})

	assert.ErrorIs(t, err, ErrNotCreated)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	repo := new(MockFlightRepository)
	coordinator := new(MockCoordinator)
	svc := NewFlightService(repo, coordinator)

	repo.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Flight{ID: 5, Status: domain.FlightStatusNotStarted}, nil)
	coordinator.On("Execute", mock.Anything, mock.MatchedBy(func(ops []txn.Op) bool {
		return ops[0].Kind == txn.KindUpdateWithParams && ops[0].Params["status"] == "IN_PROGRESS"
	})).Return(txn.Result{Outcome: txn.OutcomeSuccess})

	err := svc.UpdateStatus(context.Background(), 5, domain.FlightStatusInProgress)

	assert.NoError(t, err)
	coordinator.AssertExpectations(t)
}

func TestUpdateStatus_RejectsSkippedState(t *testing.T) {
	repo := new(MockFlightRepository)
	coordinator := new(MockCoordinator)
	svc := NewFlightService(repo, coordinator)

	repo.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Flight{ID: 5, Status: domain.FlightStatusNotStarted}, nil)

	err := svc.UpdateStatus(context.Background(), 5, domain.FlightStatusFinished)

	assert.ErrorIs(t, err, ErrBadTransition)
	coordinator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestUpdateStatus_TerminalStateIsFinal(t *testing.T) {
	repo := new(MockFlightRepository)
	coordinator := new(MockCoordinator)
	svc := NewFlightService(repo, coordinator)

	repo.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Flight{ID: 5, Status: domain.FlightStatusCancelled}, nil)

	err := svc.UpdateStatus(context.Background(), 5, domain.FlightStatusInProgress)

	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestUpdate_StatusChangeGoesThroughStateMachine(t *testing.T) {
	repo := new(MockFlightRepository)
	coordinator := new(MockCoordinator)
	svc := NewFlightService(repo, coordinator)

	repo.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Flight{ID: 5, Status: domain.FlightStatusFinished}, nil)

	err := svc.Update(context.Background(), 5, &domain.Flight{Status: domain.FlightStatusInProgress})

	assert.ErrorIs(t, err, ErrBadTransition)
	coordinator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRemove_NotFound(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewFlightService(new(MockFlightRepository), coordinator)

	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureNotFound, Err: txn.ErrNoRowsAffected})

	err := svc.Remove(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotDeleted)
}
