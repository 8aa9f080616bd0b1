package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register wires the admin inventory routes. The router group is expected to
// carry the role middleware.
func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/register_new_flight", h.registerNewFlight)
	router.PUT("/update_flight_details", h.updateFlightDetails)
	router.POST("/cancel_flight", h.cancelFlight)
	router.GET("/get_all_flight_details", h.getAllFlightDetails)
	router.GET("/get_flight_details/:flight_id", h.getFlightDetails)
}

func (h *FlightHandler) registerNewFlight(c *gin.Context) {
	var req flights.RegisterFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Flight details added successfully",
		"flight_id": flight.ID,
	})
}

type updateFlightRequest struct {
	FlightID string `json:"flight_id" binding:"required"`
	domain.FlightUpdate
}

func (h *FlightHandler) updateFlightDetails(c *gin.Context) {
	var req updateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Update(c.Request.Context(), req.FlightID, req.FlightUpdate)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Flight details updated successfully",
		"flight_id": flight.ID,
	})
}

type flightIDRequest struct {
	FlightID string `json:"flight_id" binding:"required"`
}

func (h *FlightHandler) cancelFlight(c *gin.Context) {
	var req flightIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), req.FlightID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight cancelled successfully"})
}

func (h *FlightHandler) getAllFlightDetails(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *FlightHandler) getFlightDetails(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("flight_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
