package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/from-ticket", h.createFromTicket)
	router.POST("/direct", h.createDirect)
	router.GET("/", h.list)
	router.DELETE("/:id", h.remove)
}

func (h *BookingHandler) createFromTicket(c *gin.Context) {
	var req booking.CreateFromTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateFromTicket(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) createDirect(c *gin.Context) {
	var req booking.CreateDirectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateDirect(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) list(c *gin.Context) {
	var filter booking.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, stats, err := h.service.List(c.Request.Context(), identityFrom(c), filter)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "stats": stats})
}

func (h *BookingHandler) remove(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
