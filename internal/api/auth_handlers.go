package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agencypulse/server/internal/auth"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	AgencyName string `json:"agency_name"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	profile, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, auth.ErrLoginInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and a password of at least 8 characters are required"})
		return
	}

	profile, token, err := h.auth.Register(req.Email, req.Password, req.AgencyName)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "profile": profile})
}

// Logout returns the account's session to anonymous; tokens are stateless,
// the client discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	if profile := auth.CurrentProfile(c); profile != nil {
		h.auth.EndSession(profile.Email)
		h.logger.WithField("email", profile.Email).Info("User logged out")
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// RequestReset always answers the same way so the endpoint cannot be used to
// probe which emails have accounts.
func (h *Handler) RequestReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	h.auth.RequestReset(req.Email)
	c.JSON(http.StatusOK, gin.H{"status": "If the account exists, a reset link has been issued"})
}
