package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/service/inventory"
)

type TicketHandler struct {
	service inventory.InventoryUseCase
}

func NewTicketHandler(service inventory.InventoryUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.purchase)
	router.GET("/", h.search)
	router.GET("/summary", h.summary)
	router.POST("/:id/toggle-lock", h.toggleLock)
	router.DELETE("/:id", h.remove)
}

func (h *TicketHandler) purchase(c *gin.Context) {
	var req inventory.PurchaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.Purchase(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ticketResponse carries the stored ticket plus the default asking price
// the booking form pre-fills.
type ticketResponse struct {
	domain.InventoryTicket
	SuggestedSellingPrice int64 `json:"suggested_selling_price"`
}

func (h *TicketHandler) search(c *gin.Context) {
	tickets, err := h.service.Search(c.Request.Context(), identityFrom(c), c.Query("search"), c.Query("status"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	results := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		results = append(results, ticketResponse{InventoryTicket: t, SuggestedSellingPrice: t.SuggestedSellingPrice()})
	}
	c.JSON(http.StatusOK, results)
}

func (h *TicketHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), identityFrom(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TicketHandler) toggleLock(c *gin.Context) {
	ticket, err := h.service.ToggleLock(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) remove(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
