package handler

import (
	"identity_service/internal/apperr"
	"identity_service/internal/model"
	"identity_service/internal/response"
	"identity_service/internal/service"
	"identity_service/internal/validation"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the user identity endpoints. Failures are attached to
// the context and shaped by the error middleware; success bodies go out
// through the response envelope.
type AuthHandler struct {
	service service.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.UserService) *AuthHandler {
	return &AuthHandler{service: s}
}

// CreateUser handles POST /auth. Anyone may create an account; the response
// carries the sanitized user and, for local accounts, a fresh token.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(validation.Messages(err)))
		c.Abort()
		return
	}

	created, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	response.Created(c, "User created successfully", created)
}

// GetAllUsers handles GET /auth.
func (h *AuthHandler) GetAllUsers(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	response.OK(c, "Users retrieved successfully", users)
}

// GetUserByAttribute handles GET /auth/:accessType/:userId where accessType
// selects the lookup key: id, email, or phone.
func (h *AuthHandler) GetUserByAttribute(c *gin.Context) {
	attr, ok := model.ParseLookupAttribute(c.Param("accessType"))
	if !ok {
		c.Error(apperr.Validation([]string{"accessType must be one of id, email, phone"}))
		c.Abort()
		return
	}

	user, err := h.service.GetUserByAttribute(c.Request.Context(), attr, c.Param("userId"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if user == nil {
		c.Error(apperr.NotFound("User"))
		c.Abort()
		return
	}

	response.OK(c, "User retrieved successfully", user)
}

// UpdateUser handles PATCH /auth/:userId with a partial payload.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(validation.Messages(err)))
		c.Abort()
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if user == nil {
		c.Error(apperr.NotFound("User"))
		c.Abort()
		return
	}

	response.OK(c, "User updated successfully", user)
}

// DeleteUser handles DELETE /auth/:userId. The soft delete is idempotent at
// the service level; a second call reports the user as missing.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	deleted, err := h.service.DeleteUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if !deleted {
		c.Error(apperr.NotFound("User"))
		c.Abort()
		return
	}

	response.OK(c, "User deleted successfully", gin.H{"deleted": true})
}

// RegisterAuthRoutes registers the identity routes. Creation is public;
// everything else sits behind token auth.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("", h.CreateUser)
		authGroup.GET("", authMW, h.GetAllUsers)
		authGroup.GET("/:accessType/:userId", authMW, h.GetUserByAttribute)
		authGroup.PATCH("/:userId", authMW, h.UpdateUser)
		authGroup.DELETE("/:userId", authMW, h.DeleteUser)
	}
}
