package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/txn"
)

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Execute(ctx context.Context, ops ...txn.Op) txn.Result {
	args := m.Called(ctx, ops)
	return args.Get(0).(txn.Result)
}

func TestAirportService_Create(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewAirportService(nil, coordinator)

	coordinator.On("Execute", mock.Anything, mock.MatchedBy(func(ops []txn.Op) bool {
		return ops[0].Kind == txn.KindCreate && ops[0].Entity == "airport"
	})).Return(txn.Result{Outcome: txn.OutcomeSuccess})

	err := svc.Create(context.Background(), &domain.Airport{Name: "El Dorado", Code: "BOG"})

	assert.NoError(t, err)
	coordinator.AssertExpectations(t)
}

func TestAirportService_Remove_Missing(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewAirportService(nil, coordinator)

	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureNotFound, Err: txn.ErrNoRowsAffected})

	// Removing the same missing id twice yields the same error both times.
	assert.ErrorIs(t, svc.Remove(context.Background(), 404), ErrNotFound)
	assert.ErrorIs(t, svc.Remove(context.Background(), 404), ErrNotFound)
}

func TestPilotService_Update_StoreFailure(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewPilotService(nil, coordinator)

	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureUnavailable, Err: errors.New("connection reset")})

	err := svc.Update(context.Background(), 1, &domain.Pilot{Name: "Ada"})

	assert.EqualError(t, err, "pilot not updated")
}

func TestFareService_Create_ConstraintFailure(t *testing.T) {
	coordinator := new(MockCoordinator)
	svc := NewFareService(nil, coordinator)

	coordinator.On("Execute", mock.Anything, mock.Anything).
		Return(txn.Result{Outcome: txn.OutcomeFailure, Class: txn.FailureConstraint, Err: errors.New("fk violation")})

	err := svc.Create(context.Background(), &domain.Fare{TripID: 99, Kind: domain.FareKindDistance})

	assert.EqualError(t, err, "fare not created")
}
