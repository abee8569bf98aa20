package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Style    string `json:"style" binding:"omitempty,oneof=disciplinarian improviser minimalist"`
}

// AthleteResponse excludes sensitive info like password hash
type AthleteResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	Style     domain.SchedulingStyle `json:"style"`
	CreatedAt time.Time              `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Athlete AthleteResponse `json:"athlete"`
}

// --- Handler Methods ---

// Register creates a new athlete account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, domain.SchedulingStyle(req.Style))
	if err != nil {
		if errors.Is(err, service.ErrAthleteAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAthleteToResponse(athlete))
}

// Login authenticates an athlete and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, athlete, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Athlete: MapAthleteToResponse(athlete),
	})
}

type UpdateStyleRequest struct {
	Style string `json:"style" binding:"required,oneof=disciplinarian improviser minimalist"`
}

// UpdateStyle changes the authenticated athlete's scheduling style.
func (h *AuthHandler) UpdateStyle(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req UpdateStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.authService.UpdateStyle(c.Request.Context(), athleteID, domain.SchedulingStyle(req.Style))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update scheduling style")
		return
	}

	c.JSON(http.StatusOK, MapAthleteToResponse(athlete))
}

// MapAthleteToResponse converts a domain Athlete to an AthleteResponse DTO.
// Excludes PasswordHash and converts the ObjectID to a string.
func MapAthleteToResponse(athlete *domain.Athlete) AthleteResponse {
	if athlete == nil {
		return AthleteResponse{}
	}
	return AthleteResponse{
		ID:        athlete.ID.Hex(),
		Name:      athlete.Name,
		Email:     athlete.Email,
		Style:     athlete.Style,
		CreatedAt: athlete.CreatedAt,
	}
}
