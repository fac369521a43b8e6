package account

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UpdateAccountRequest represents a partial profile update.
// @Description payload to change profile fields; omitted or empty fields stay unchanged
type UpdateAccountRequest struct {
	Email     string `json:"email" binding:"omitempty,email,max=255"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AccountHandler handles HTTP requests for account profiles.
type AccountHandler struct {
	router  *gin.RouterGroup
	service Service
	logger  *zap.Logger
}

// NewAccountHandler registers profile endpoints on the given router group.
// The group must already verify bearer tokens.
func NewAccountHandler(router *gin.RouterGroup, service Service, logger *zap.Logger) *AccountHandler {
	h := &AccountHandler{router: router, service: service, logger: logger}
	h.router.GET("/users", h.ListAccounts)
	h.router.GET("/users/me", h.ReadCurrentAccount)
	h.router.GET("/users/:id", h.ReadAccountByID)
	h.router.PUT("/users/:id", h.UpdateAccount)
	h.router.DELETE("/users/:id", h.DeleteAccount)
	return h
}

func (h *AccountHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// ListAccounts godoc
// @Summary      List accounts
// @Description  Fetch every account profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   Account
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.Error("service.ListAccounts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while retrieving users"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// ReadAccountByID godoc
// @Summary      Get account by ID
// @Description  Fetch an account profile by its ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  Account
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *AccountHandler) ReadAccountByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	account, found, err := h.service.ReadAccountByID(c.Request.Context(), id)
	switch {
	case err != nil:
		h.logger.Error("service.ReadAccountByID failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while retrieving the user"})
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusOK, account)
	}
}

// ReadCurrentAccount godoc
// @Summary      Get current account
// @Description  Fetch the profile of the account the access token was issued to
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Account
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *AccountHandler) ReadCurrentAccount(c *gin.Context) {
	actingID, ok := SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	account, found, err := h.service.ReadCurrentAccount(c.Request.Context(), actingID)
	switch {
	case err != nil:
		h.logger.Error("service.ReadCurrentAccount failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while retrieving user information"})
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusOK, account)
	}
}

// UpdateAccount godoc
// @Summary      Update account
// @Description  Change profile fields of the caller's own account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                   true  "Account ID"
// @Param        payload  body      UpdateAccountRequest  true  "Fields to change"
// @Success      200      {object}  Account
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}
	actingID, _ := SubjectFromContext(c)
	account, err := h.service.UpdateAccount(c.Request.Context(), actingID, id, UpdateAccountInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, account)
	case errors.Is(err, ErrNotAccountOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only update your own profile"})
	case errors.Is(err, ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, ErrEmailAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is already taken by another user"})
	default:
		h.logger.Error("service.UpdateAccount failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while updating the user"})
	}
}

// DeleteAccount godoc
// @Summary      Delete account
// @Description  Remove the caller's own account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	actingID, _ := SubjectFromContext(c)
	deleted, err := h.service.DeleteAccount(c.Request.Context(), actingID, id)
	switch {
	case errors.Is(err, ErrNotAccountOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own profile"})
	case err != nil:
		h.logger.Error("service.DeleteAccount failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while deleting the user"})
	case !deleted:
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusOK, MessageResponse{Message: "user deleted successfully"})
	}
}
