package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/service/trips"
)

// MockTripUseCase is a mock implementation of trips.TripUseCase
type MockTripUseCase struct {
	mock.Mock
}

func (m *MockTripUseCase) List(ctx context.Context) ([]domain.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) AvailableSeats(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockTripUseCase) Create(ctx context.Context, trip *domain.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripUseCase) Update(ctx context.Context, id int64, trip *domain.Trip) error {
	args := m.Called(ctx, id, trip)
	return args.Error(0)
}

func (m *MockTripUseCase) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTripUseCase) ReserveSeats(ctx context.Context, input trips.SeatRequest) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockTripUseCase) ReleaseSeats(ctx context.Context, input trips.SeatRequest) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func tripTestContext(t *testing.T, method, path string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestTripHandler_availableSeats(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "GET", "/trips/10/seats", nil)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("AvailableSeats", c.Request.Context(), int64(10)).Return(20, nil)

	handler.availableSeats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"trip_id":10,"available_seats":20}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestTripHandler_reserve(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "POST", "/trips/10/reserve", map[string]any{
		"seats":      2,
		"identifier": "a@b.com",
	})
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("ReserveSeats", c.Request.Context(), trips.SeatRequest{TripID: 10, Seats: 2, Identifier: "a@b.com"}).
		Return(nil)

	handler.reserve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestTripHandler_reserve_noSeats(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "POST", "/trips/10/reserve", map[string]any{"seats": 500})
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("ReserveSeats", c.Request.Context(), mock.Anything).
		Return(trips.ErrNoSeats)

	handler.reserve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not enough available seats")
}

func TestTripHandler_reserve_flightHeld(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "POST", "/trips/10/reserve", map[string]any{"seats": 1})
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	mockService.On("ReserveSeats", c.Request.Context(), mock.Anything).
		Return(trips.ErrFlightHeld)

	handler.reserve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "flight is being booked")
}

func TestTripHandler_reserve_identifierFromToken(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "POST", "/trips/10/reserve", map[string]any{"seats": 1})
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	c.Set("identifier", "jwt@b.com")

	mockService.On("ReserveSeats", c.Request.Context(), trips.SeatRequest{TripID: 10, Seats: 1, Identifier: "jwt@b.com"}).
		Return(nil)

	handler.reserve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestTripHandler_reserve_invalidID(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "POST", "/trips/abc/reserve", map[string]any{"seats": 1})
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.reserve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything)
}

func TestTripHandler_remove_notFound(t *testing.T) {
	mockService := &MockTripUseCase{}
	handler := NewTripHandler(mockService)

	c, w := tripTestContext(t, "DELETE", "/trips/404", nil)
	c.Params = gin.Params{{Key: "id", Value: "404"}}

	mockService.On("Remove", c.Request.Context(), int64(404)).Return(trips.ErrNotDeleted)

	handler.remove(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
