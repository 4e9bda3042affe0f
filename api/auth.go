package api

import (
	"errors"
	"net/http"

	"github.com/dcastano/aeroops/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/activate", h.activate)
}

type registerRequest struct {
	Identifier string      `json:"identifier" binding:"required,email"`
	Password   string      `json:"password" binding:"required,min=8"`
	Name       string      `json:"name" binding:"required"`
	Surname    string      `json:"surname" binding:"required"`
	Age        int         `json:"age" binding:"required,gte=0"`
	Card       cardRequest `json:"card" binding:"required"`
}

type cardRequest struct {
	Holder  string `json:"holder" binding:"required"`
	Address string `json:"address" binding:"required"`
	Number  string `json:"number" binding:"required"`
	Expiry  string `json:"expiry" binding:"required,cardexpiry"`
	CVV     string `json:"cvv" binding:"required,max=3"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type activateRequest struct {
	Identifier string `json:"identifier" binding:"required,email"`
	Code       string `json:"code" binding:"required"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		Name:       req.Name,
		Surname:    req.Surname,
		Age:        req.Age,
		Card: auth.CardInput{
			Holder:  req.Card.Holder,
			Address: req.Card.Address,
			Number:  req.Card.Number,
			Expiry:  req.Card.Expiry,
			CVV:     req.Card.CVV,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "account already exists"})
		case errors.Is(err, auth.ErrNotCreated):
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "user not created"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), auth.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		// One shape for every login failure.
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
		return
	}

	if err := h.service.Activate(c.Request.Context(), auth.ActivateInput{
		Identifier: req.Identifier,
		Code:       req.Code,
	}); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account activated"})
}
