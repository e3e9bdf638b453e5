package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/desktop"
	"github.com/mdkarim/traveldesk/internal/service/auth"
)

type AuthHandler struct {
	service auth.AuthUseCase
	desktop *desktop.Registry
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	ExpiresAt string `json:"expires_at"`
}

func NewAuthHandler(service auth.AuthUseCase, desktopRegistry *desktop.Registry) *AuthHandler {
	return &AuthHandler{service: service, desktop: desktopRegistry}
}

func (h *AuthHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/login", h.login)
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// One generic message for every credential failure.
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		Username:  session.Username,
		Role:      string(session.Role),
		Name:      session.Name,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	token := sessionTokenFrom(c)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Logout tears the session's desktop down with it.
	h.desktop.Drop(token)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
