package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/internal/service/reports"
)

type ReportHandler struct {
	service reports.ReportUseCase
}

func NewReportHandler(service reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.generate)
	router.GET("/export", h.export)
}

func (h *ReportHandler) bindParams(c *gin.Context) (reports.Params, bool) {
	var params reports.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return params, false
	}
	if params.Type == "" {
		params.Type = reports.ReportAll
	}
	switch params.Type {
	case reports.ReportDaily:
		if params.Date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required for a daily report"})
			return params, false
		}
	case reports.ReportMonthly:
		if params.Month == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month is required for a monthly report"})
			return params, false
		}
	case reports.ReportAll:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown report type %q", params.Type)})
		return params, false
	}
	return params, true
}

func (h *ReportHandler) generate(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}

	report, err := h.service.Generate(c.Request.Context(), identityFrom(c), params)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// export streams the windowed booking set as a CSV attachment.
func (h *ReportHandler) export(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}

	filename, data, err := h.service.ExportCSV(c.Request.Context(), identityFrom(c), params)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
