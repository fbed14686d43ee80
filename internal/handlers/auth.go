package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new profile together with its first organization.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email            string `json:"email" binding:"required"`
		Password         string `json:"password" binding:"required"`
		FullName         string `json:"full_name" binding:"max=255"`
		OrganizationName string `json:"organization_name" binding:"max=255"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	profile, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProfileDTO(*profile))
}

// Login authenticates a profile and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	profile, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyProfileID, profile.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentProfile returns the authenticated profile.
func (h *AuthHandler) GetCurrentProfile(c *gin.Context) {
	profileID, exists := middleware.GetProfileID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidEmail):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrProfileInactive):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProfileNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser),
		errors.Is(err, services.ErrFailedToCreateOrg):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
