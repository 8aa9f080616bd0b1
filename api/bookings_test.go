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
	"github.com/stretchr/testify/require"
	"github.com/td-airways/flightdesk/internal/auth"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/service/booking"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) StartBooking(ctx context.Context, snapshot domain.ContactSnapshot, input booking.StartBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, snapshot, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListCandidateFlights(ctx context.Context, bookingID string) ([]domain.Flight, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockBookingUseCase) SelectTime(ctx context.Context, bookingID, journeyTime string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, journeyTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) InitiatePayment(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, bookingID, email, code string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpireStaleBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newBookingRouter(service booking.BookingUseCase, claims *auth.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if claims != nil {
		router.Use(func(c *gin.Context) {
			c.Set("claims", claims)
			c.Next()
		})
	}
	NewBookingHandler(service).Register(router.Group("/"))
	return router
}

func testClaims() *auth.Claims {
	return &auth.Claims{
		UserID:    "user-1",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		PhoneNo:   "1234567890",
		Role:      domain.RoleUser,
	}
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSelectDateRoutePassengers_Created(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	created := &domain.Booking{ID: "b1", Status: domain.BookingStatusDraft}
	service.On("StartBooking", mock.Anything,
		mock.MatchedBy(func(s domain.ContactSnapshot) bool { return s.UserID == "user-1" && s.Email == "jane@example.com" }),
		mock.MatchedBy(func(in booking.StartBookingInput) bool { return in.NoOfAdults == 2 && in.StartPoint == "New York" }),
	).Return(created, nil)

	rec := postJSON(router, "/select_date_route_passengers", gin.H{
		"journey_date":  "2025-12-25",
		"start_point":   "New York",
		"end_point":     "Los Angeles",
		"no_of_adults":  2,
		"no_of_infants": 1,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Booking details saved", body["message"])
	assert.Equal(t, "b1", body["booking_id"])
}

func TestSelectDateRoutePassengers_NoClaims(t *testing.T) {
	router := newBookingRouter(&MockBookingUseCase{}, nil)

	rec := postJSON(router, "/select_date_route_passengers", gin.H{"journey_date": "2025-12-25"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAvailableFlights_NoAvailability(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("ListCandidateFlights", mock.Anything, "b1").Return(nil, domain.ErrNoAvailability)

	req := httptest.NewRequest(http.MethodGet, "/get_available_flights?booking_id=b1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no flights available")
}

func TestGetAvailableFlights_MissingBookingID(t *testing.T) {
	router := newBookingRouter(&MockBookingUseCase{}, testClaims())

	req := httptest.NewRequest(http.MethodGet, "/get_available_flights", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectTime_FlightUnavailable(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("SelectTime", mock.Anything, "b1", "99:99").Return(nil, domain.ErrFlightUnavailable)

	rec := postJSON(router, "/select_time", gin.H{"booking_id": "b1", "journey_time": "99:99"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "flight not available at the selected time")
}

func TestSelectTime_Success(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	updated := &domain.Booking{ID: "b1", FlightID: "f1", Status: domain.BookingStatusTimeSelected}
	service.On("SelectTime", mock.Anything, "b1", "14:30").Return(updated, nil)

	rec := postJSON(router, "/select_time", gin.H{"booking_id": "b1", "journey_time": "14:30"})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Time selected", body["message"])
	assert.Equal(t, "f1", body["flight_id"])
}

func TestSendPaymentOTP_ReturnsBill(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	pending := &domain.Booking{ID: "b1", BillAmount: 35000, Status: domain.BookingStatusPaymentPending}
	service.On("InitiatePayment", mock.Anything, "b1").Return(pending, nil)

	rec := postJSON(router, "/send_payment_otp", gin.H{"booking_id": "b1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "OTP sent for payment confirmation", body["message"])
	assert.Equal(t, float64(35000), body["bill_amount"])
}

func TestSendPaymentOTP_NoFlightSelected(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("InitiatePayment", mock.Anything, "b1").
		Return(nil, domain.ErrPrecondition)

	rec := postJSON(router, "/send_payment_otp", gin.H{"booking_id": "b1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyPayment_InvalidCode(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("ConfirmPayment", mock.Anything, "b1", "jane@example.com", "000000").
		Return(nil, domain.ErrInvalidCode)

	rec := postJSON(router, "/verify_payment", gin.H{
		"booking_id": "b1",
		"email":      "jane@example.com",
		"otp":        "000000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired OTP")
}

func TestVerifyPayment_Success(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	confirmed := &domain.Booking{ID: "b1", Status: domain.BookingStatusConfirmed}
	service.On("ConfirmPayment", mock.Anything, "b1", "jane@example.com", "123456").Return(confirmed, nil)

	rec := postJSON(router, "/verify_payment", gin.H{
		"booking_id": "b1",
		"email":      "jane@example.com",
		"otp":        "123456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payment verified, booking completed", decodeBody(t, rec)["message"])
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	router := newBookingRouter(&MockBookingUseCase{}, testClaims())

	rec := postJSON(router, "/verify_payment", gin.H{"booking_id": "b1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelFlightBooking_Unconfirmed(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("CancelBooking", mock.Anything, "b1").Return(nil, domain.ErrPrecondition)

	rec := postJSON(router, "/cancel_flight_booking", gin.H{"booking_id": "b1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelFlightBooking_Success(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	cancelled := &domain.Booking{ID: "b1", Status: domain.BookingStatusCancelled}
	service.On("CancelBooking", mock.Anything, "b1").Return(cancelled, nil)

	rec := postJSON(router, "/cancel_flight_booking", gin.H{"booking_id": "b1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Booking canceled successfully", decodeBody(t, rec)["message"])
}

func TestCancelFlightBooking_NotFound(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, testClaims())

	service.On("CancelBooking", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	rec := postJSON(router, "/cancel_flight_booking", gin.H{"booking_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
