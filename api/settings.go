package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/service/settings"
)

type SettingsHandler struct {
	service settings.SettingsUseCase
}

func NewSettingsHandler(service settings.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) Register(router *gin.RouterGroup) {
	router.GET("/company", h.company)
	router.PUT("/company", h.saveCompany)
	router.GET("/notifications", h.notifications)
	router.PUT("/notifications", h.saveNotifications)
	router.GET("/security", h.security)
	router.PUT("/security", h.saveSecurity)
	router.GET("/export", h.export)
}

func (h *SettingsHandler) company(c *gin.Context) {
	result, err := h.service.Company(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SettingsHandler) saveCompany(c *gin.Context) {
	var req domain.CompanySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SaveCompany(c.Request.Context(), identityFrom(c), req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *SettingsHandler) notifications(c *gin.Context) {
	result, err := h.service.Notifications(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SettingsHandler) saveNotifications(c *gin.Context) {
	var req domain.NotificationSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SaveNotifications(c.Request.Context(), identityFrom(c), req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *SettingsHandler) security(c *gin.Context) {
	result, err := h.service.Security(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SettingsHandler) saveSecurity(c *gin.Context) {
	var req domain.SecuritySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SaveSecurity(c.Request.Context(), identityFrom(c), req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *SettingsHandler) export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="system_settings.json"`)
	c.Data(http.StatusOK, "application/json", data)
}
