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
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/service/flights"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Register(ctx context.Context, input flights.RegisterFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id string, upd domain.FlightUpdate) (*domain.Flight, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Cancel(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func jsonBody(body interface{}) *bytes.Reader {
	payload, _ := json.Marshal(body)
	return bytes.NewReader(payload)
}

func newFlightRouter(service flights.FlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(service).Register(router.Group("/"))
	return router
}

func TestRegisterNewFlight_Created(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	flight := &domain.Flight{ID: "f1", Name: "TD123"}
	service.On("Register", mock.Anything, mock.MatchedBy(func(in flights.RegisterFlightInput) bool {
		return in.Name == "TD123" && in.Capacity == 180 && in.Price == 15000
	})).Return(flight, nil)

	rec := postJSON(router, "/register_new_flight", gin.H{
		"flight_name":        "TD123",
		"start_point":        "New York",
		"end_point":          "Los Angeles",
		"journey_date":       "2025-12-25",
		"journey_time":       "14:30",
		"available_capacity": 180,
		"flight_price":       15000,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Flight details added successfully", body["message"])
	assert.Equal(t, "f1", body["flight_id"])
}

func TestRegisterNewFlight_Duplicate(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrValidation)

	rec := postJSON(router, "/register_new_flight", gin.H{
		"flight_name":  "TD123",
		"journey_date": "2025-12-25",
		"journey_time": "14:30",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFlightDetails_PartialUpdate(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	flight := &domain.Flight{ID: "f1", Price: 18000}
	service.On("Update", mock.Anything, "f1", mock.MatchedBy(func(upd domain.FlightUpdate) bool {
		return upd.Price != nil && *upd.Price == 18000 && upd.Name == nil && upd.Capacity == nil
	})).Return(flight, nil)

	req := httptest.NewRequest(http.MethodPut, "/update_flight_details",
		jsonBody(gin.H{"flight_id": "f1", "flight_price": 18000}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Flight details updated successfully", decodeBody(t, rec)["message"])
	service.AssertExpectations(t)
}

func TestUpdateFlightDetails_MissingFlightID(t *testing.T) {
	router := newFlightRouter(&MockFlightUseCase{})

	req := httptest.NewRequest(http.MethodPut, "/update_flight_details",
		jsonBody(gin.H{"flight_price": 18000}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFlightDetails_UnknownFlight(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodPut, "/update_flight_details",
		jsonBody(gin.H{"flight_id": "missing", "flight_price": 18000}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelFlight_Success(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Cancel", mock.Anything, "f1").Return(nil)

	rec := postJSON(router, "/cancel_flight", gin.H{"flight_id": "f1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Flight cancelled successfully", decodeBody(t, rec)["message"])
}

func TestGetFlightDetails_ReturnsFlight(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("GetByID", mock.Anything, "f1").Return(&domain.Flight{ID: "f1", Name: "TD123"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/get_flight_details/f1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TD123")
}

func TestGetFlightDetails_UnknownFlight(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/get_flight_details/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAllFlightDetails_ReturnsInventory(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("List", mock.Anything).Return([]domain.Flight{{ID: "f1"}, {ID: "f2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/get_all_flight_details", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var flightsOut []domain.Flight
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flightsOut))
	assert.Len(t, flightsOut, 2)
}
