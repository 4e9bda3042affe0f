package api

import (
	"errors"
	"net/http"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.PUT("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.remove)
}

type flightRequest struct {
	AircraftID         int64  `json:"aircraft_id" binding:"required"`
	PilotID            int64  `json:"pilot_id" binding:"required"`
	CopilotID          int64  `json:"copilot_id" binding:"required"`
	CrewID             int64  `json:"crew_id" binding:"required"`
	TotalPassengers    int    `json:"total_passengers" binding:"gte=0"`
	ReservedPassengers int    `json:"reserved_passengers" binding:"gte=0"`
	Status             string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	flight, ok := bindFlight(c)
	if !ok {
		return
	}
	if err := h.service.Create(c.Request.Context(), flight); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, ok := bindFlight(c)
	if !ok {
		return
	}
	if err := h.service.Update(c.Request.Context(), id, flight); err != nil {
		if errors.Is(err, flights.ErrBadTransition) {
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "flight not updated"})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, domain.FlightStatus(req.Status)); err != nil {
		if errors.Is(err, flights.ErrBadTransition) {
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func (h *FlightHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func bindFlight(c *gin.Context) (*domain.Flight, bool) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return nil, false
	}
	return &domain.Flight{
		AircraftID:         req.AircraftID,
		PilotID:            req.PilotID,
		CopilotID:          req.CopilotID,
		CrewID:             req.CrewID,
		TotalPassengers:    req.TotalPassengers,
		ReservedPassengers: req.ReservedPassengers,
		Status:             domain.FlightStatus(req.Status),
	}, true
}
