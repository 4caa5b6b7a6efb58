package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/services"
)

// AuthHandler handles sign-in and password recovery
type AuthHandler struct {
	authService services.AuthService
	tokenTTL    time.Duration
	logger      logger.Logger
}

// NewAuthHandler creates a new auth handler with service injection
func NewAuthHandler(authService services.AuthService, tokenTTL time.Duration, log logger.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &AuthHandler{
		authService: authService,
		tokenTTL:    tokenTTL,
		logger:      log,
	}
}

// ForgotPasswordRequest represents a password recovery request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the emailed token and the new password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// setSecureCookie sets a secure HTTP-only cookie
func setSecureCookie(c *gin.Context, name, value string, maxAge int) {
	secure := c.Request.Header.Get("X-Forwarded-Proto") == "https" || c.Request.TLS != nil
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

// Login authenticates a secretary or a student
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setSecureCookie(c, "auth_token", response.Token, int(h.tokenTTL.Seconds()))
	c.JSON(http.StatusOK, response)
}

// ForgotPassword emails a reset link to a student
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	if _, authenticated := auth.ClaimsFrom(c); authenticated {
		respondError(c, h.logger, errors.Forbidden("already signed in", nil))
		return
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset link sent"})
}

// ResetPassword sets a new password using an emailed token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.authService.ResetPassword(ctx, req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
