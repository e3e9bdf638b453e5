package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/desktop"
)

// DesktopHandler drives the per-session window manager. Every route
// resolves the caller's session token to its own Manager; one session
// can never touch another's windows.
type DesktopHandler struct {
	registry *desktop.Registry
}

func NewDesktopHandler(registry *desktop.Registry) *DesktopHandler {
	return &DesktopHandler{registry: registry}
}

func (h *DesktopHandler) Register(router *gin.RouterGroup) {
	router.GET("/windows", h.listWindows)
	router.POST("/windows/:id/open", h.open)
	router.POST("/windows/:id/close", h.close)
	router.POST("/windows/:id/minimize", h.minimize)
	router.POST("/windows/:id/restore", h.restore)
	router.POST("/windows/:id/toggle-maximize", h.toggleMaximize)
	router.POST("/windows/:id/focus", h.focus)
	router.POST("/drag/start", h.dragStart)
	router.POST("/drag/move", h.dragMove)
	router.POST("/drag/end", h.dragEnd)
}

func (h *DesktopHandler) manager(c *gin.Context) *desktop.Manager {
	return h.registry.Get(sessionTokenFrom(c))
}

func (h *DesktopHandler) listWindows(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager(c).Windows())
}

func (h *DesktopHandler) open(c *gin.Context) {
	window := h.manager(c).Open(c.Param("id"))
	c.JSON(http.StatusOK, window)
}

func (h *DesktopHandler) close(c *gin.Context) {
	h.manager(c).Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *DesktopHandler) minimize(c *gin.Context) {
	if err := h.manager(c).Minimize(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "minimized"})
}

func (h *DesktopHandler) restore(c *gin.Context) {
	if err := h.manager(c).Restore(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

func (h *DesktopHandler) toggleMaximize(c *gin.Context) {
	if err := h.manager(c).ToggleMaximize(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

func (h *DesktopHandler) focus(c *gin.Context) {
	z, err := h.manager(c).BringToFront(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"z": z})
}

type dragStartRequest struct {
	WindowID string `json:"window_id"`
	PointerX int    `json:"pointer_x"`
	PointerY int    `json:"pointer_y"`
}

func (h *DesktopHandler) dragStart(c *gin.Context) {
	var req dragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.manager(c).DragStart(req.WindowID, req.PointerX, req.PointerY); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "dragging"})
}

type dragMoveRequest struct {
	PointerX int `json:"pointer_x"`
	PointerY int `json:"pointer_y"`
}

func (h *DesktopHandler) dragMove(c *gin.Context) {
	var req dragMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	geometry, err := h.manager(c).DragMove(req.PointerX, req.PointerY)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, geometry)
}

func (h *DesktopHandler) dragEnd(c *gin.Context) {
	h.manager(c).DragEnd()
	c.JSON(http.StatusOK, gin.H{"status": "released"})
}
