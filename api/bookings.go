package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/internal/middleware"
	"github.com/td-airways/flightdesk/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/select_date_route_passengers", h.selectDateRoutePassengers)
	router.GET("/get_available_flights", h.getAvailableFlights)
	router.POST("/select_time", h.selectTime)
	router.POST("/send_payment_otp", h.sendPaymentOTP)
	router.POST("/verify_payment", h.verifyPayment)
	router.POST("/cancel_flight_booking", h.cancelFlightBooking)
}

func (h *BookingHandler) selectDateRoutePassengers(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}

	var req booking.StartBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.StartBooking(c.Request.Context(), claims.Snapshot(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Booking details saved",
		"booking_id": created.ID,
	})
}

func (h *BookingHandler) getAvailableFlights(c *gin.Context) {
	bookingID := c.Query("booking_id")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id is required"})
		return
	}

	flights, err := h.service.ListCandidateFlights(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

type selectTimeRequest struct {
	BookingID   string `json:"booking_id" binding:"required"`
	JourneyTime string `json:"journey_time" binding:"required"`
}

func (h *BookingHandler) selectTime(c *gin.Context) {
	var req selectTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.SelectTime(c.Request.Context(), req.BookingID, req.JourneyTime)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Time selected",
		"flight_id": updated.FlightID,
	})
}

type bookingIDRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

func (h *BookingHandler) sendPaymentOTP(c *gin.Context) {
	var req bookingIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.InitiatePayment(c.Request.Context(), req.BookingID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "OTP sent for payment confirmation",
		"booking_id":  updated.ID,
		"bill_amount": updated.BillAmount,
	})
}

type verifyPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Email     string `json:"email" binding:"required"`
	OTP       string `json:"otp" binding:"required"`
}

func (h *BookingHandler) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmed, err := h.service.ConfirmPayment(c.Request.Context(), req.BookingID, req.Email, req.OTP)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Payment verified, booking completed",
		"booking_id": confirmed.ID,
	})
}

func (h *BookingHandler) cancelFlightBooking(c *gin.Context) {
	var req bookingIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), req.BookingID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Booking canceled successfully",
		"booking_id": cancelled.ID,
	})
}
