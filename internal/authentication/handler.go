package authentication

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/credential-session-service/internal/apperr"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,max=128"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RevokeRequest is the payload for ending a session.
type RevokeRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler handles session endpoints.
type AuthHandler struct {
	service AuthenticationService
	logger  *zap.Logger
}

// NewAuthHandler registers register, login and refresh on public and revoke on
// protected, which must already verify bearer tokens.
func NewAuthHandler(public, protected *gin.RouterGroup, service AuthenticationService, logger *zap.Logger) *AuthHandler {
	h := &AuthHandler{service: service, logger: logger}
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	protected.POST("/auth/revoke", h.Revoke)
	return h
}

// Register godoc
// @Summary      Register
// @Description  Create an account and open its first session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RegisterRequest  true  "Account details"
// @Success      200      {object}  TokenPair
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration payload"})
		return
	}
	pair, err := h.service.Register(c.Request.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, pair)
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
	case errors.Is(err, ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "password does not meet requirements"})
	default:
		h.logger.Error("Register service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticate with email and password and issue tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  TokenPair
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password format"})
		return
	}
	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, pair)
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		h.logger.Error("Login service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
	}
}

// Refresh godoc
// @Summary      Refresh Token
// @Description  Rotate the refresh token and issue a new pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RefreshRequest  true  "Refresh token payload"
// @Success      200      {object}  TokenPair
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}
	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, pair)
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
	default:
		h.logger.Error("Refresh service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not refresh token"})
	}
}

// Revoke godoc
// @Summary      Revoke
// @Description  End the session holding the given refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      RevokeRequest  true  "Revoke payload"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/revoke [post]
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid revoke payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}
	revoked, err := h.service.Revoke(c.Request.Context(), req.RefreshToken)
	switch {
	case err != nil:
		h.logger.Error("Revoke service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not revoke token"})
	case !revoked:
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token not found"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
	}
}
