package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/service/auth"
)

type UserHandler struct {
	service auth.AuthUseCase
}

func NewUserHandler(service auth.AuthUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.PATCH("/:username/active", h.setActive)
	router.PUT("/:username/password", h.resetPassword)
	router.DELETE("/:username", h.remove)
}

func (h *UserHandler) list(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) create(c *gin.Context) {
	var req auth.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *UserHandler) setActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetUserActive(c.Request.Context(), identityFrom(c), c.Param("username"), req.Active); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *UserHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), identityFrom(c), c.Param("username"), req.Password); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *UserHandler) remove(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), identityFrom(c), c.Param("username")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
