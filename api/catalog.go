package api

import (
	"errors"
	"net/http"

	"github.com/dcastano/aeroops/internal/domain"
	"github.com/dcastano/aeroops/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

// Handlers for the reference-data surfaces: airports, pilots, fares, cards.

type AirportHandler struct {
	service *catalog.AirportService
}

func NewAirportHandler(service *catalog.AirportService) *AirportHandler {
	return &AirportHandler{service: service}
}

func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type airportRequest struct {
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code" binding:"required,len=3"`
	LocationID int64  `json:"location_id" binding:"required"`
}

func (h *AirportHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AirportHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	airport, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "airport not found"})
		return
	}
	c.JSON(http.StatusOK, airport)
}

func (h *AirportHandler) create(c *gin.Context) {
	var req airportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	airport := &domain.Airport{Name: req.Name, Code: req.Code, LocationID: req.LocationID}
	if err := h.service.Create(c.Request.Context(), airport); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, airport)
}

func (h *AirportHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req airportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	airport := &domain.Airport{Name: req.Name, Code: req.Code, LocationID: req.LocationID}
	if err := h.service.Update(c.Request.Context(), id, airport); err != nil {
		writeCatalogError(c, err, "airport")
		return
	}
	c.JSON(http.StatusOK, airport)
}

func (h *AirportHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err, "airport")
		return
	}
	c.Status(http.StatusNoContent)
}

type PilotHandler struct {
	service *catalog.PilotService
}

func NewPilotHandler(service *catalog.PilotService) *PilotHandler {
	return &PilotHandler{service: service}
}

func (h *PilotHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type pilotRequest struct {
	Name    string `json:"name" binding:"required"`
	License string `json:"license" binding:"required"`
}

func (h *PilotHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PilotHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pilot, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pilot not found"})
		return
	}
	c.JSON(http.StatusOK, pilot)
}

func (h *PilotHandler) create(c *gin.Context) {
	var req pilotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	pilot := &domain.Pilot{Name: req.Name, License: req.License}
	if err := h.service.Create(c.Request.Context(), pilot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pilot)
}

func (h *PilotHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req pilotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	pilot := &domain.Pilot{Name: req.Name, License: req.License}
	if err := h.service.Update(c.Request.Context(), id, pilot); err != nil {
		writeCatalogError(c, err, "pilot")
		return
	}
	c.JSON(http.StatusOK, pilot)
}

func (h *PilotHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err, "pilot")
		return
	}
	c.Status(http.StatusNoContent)
}

type FareHandler struct {
	service *catalog.FareService
}

func NewFareHandler(service *catalog.FareService) *FareHandler {
	return &FareHandler{service: service}
}

func (h *FareHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.search)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type fareRequest struct {
	TripID     int64  `json:"trip_id" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=DISTANCE CLASS"`
	Name       string `json:"name" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required,gt=0"`
}

func (h *FareHandler) search(c *gin.Context) {
	result, err := h.service.SearchByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FareHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fare, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fare not found"})
		return
	}
	c.JSON(http.StatusOK, fare)
}

func (h *FareHandler) create(c *gin.Context) {
	var req fareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	fare := &domain.Fare{TripID: req.TripID, Kind: domain.FareKind(req.Kind), Name: req.Name, PriceCents: req.PriceCents}
	if err := h.service.Create(c.Request.Context(), fare); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, fare)
}

func (h *FareHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req fareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	fare := &domain.Fare{TripID: req.TripID, Kind: domain.FareKind(req.Kind), Name: req.Name, PriceCents: req.PriceCents}
	if err := h.service.Update(c.Request.Context(), id, fare); err != nil {
		writeCatalogError(c, err, "fare")
		return
	}
	c.JSON(http.StatusOK, fare)
}

func (h *FareHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err, "fare")
		return
	}
	c.Status(http.StatusNoContent)
}

type CardHandler struct {
	service *catalog.CardService
}

func NewCardHandler(service *catalog.CardService) *CardHandler {
	return &CardHandler{service: service}
}

func (h *CardHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type cardResponse struct {
	ID      int64  `json:"id"`
	Holder  string `json:"holder"`
	Address string `json:"address"`
	Number  string `json:"number"`
	Expiry  string `json:"expiry"`
}

// The CVV never leaves the service and the number goes out masked.
func toCardResponse(card *domain.Card) cardResponse {
	return cardResponse{
		ID:      card.ID,
		Holder:  card.Holder,
		Address: card.Address,
		Number:  card.MaskedNumber(),
		Expiry:  card.Expiry,
	}
}

func (h *CardHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	card, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}
	card := &domain.Card{Holder: req.Holder, Address: req.Address, Number: req.Number, Expiry: req.Expiry, CVV: req.CVV}
	if err := h.service.Update(c.Request.Context(), id, card); err != nil {
		writeCatalogError(c, err, "card")
		return
	}
	card.ID = id
	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err, "card")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeCatalogError(c *gin.Context, err error, entity string) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
}
