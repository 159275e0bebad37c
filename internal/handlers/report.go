// internal/handlers/report.go
package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghanadude/backend/internal/services"
	"github.com/ghanadude/backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportWindow parses the from/to query params, defaulting to the last
// 30 days.
func reportWindow(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.BadRequestResponse(c, "from must be YYYY-MM-DD", nil)
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.BadRequestResponse(c, "to must be YYYY-MM-DD", nil)
			return time.Time{}, time.Time{}, false
		}
		to = parsed.AddDate(0, 0, 1) // inclusive end date
	}

	if !from.Before(to) {
		utils.BadRequestResponse(c, "from must be before to", nil)
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}

// GET /v1/reports/sales (admin)
func (h *ReportHandler) Sales(c *gin.Context) {
	granularity := c.DefaultQuery("granularity", "daily")
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}

	summary, err := h.reportService.SalesReport(granularity, from, to)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported granularity") {
			utils.BadRequestResponse(c, "granularity must be daily, monthly or yearly", nil)
			return
		}
		utils.InternalErrorResponse(c, "Failed to build sales report")
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /v1/reports/dev-earnings (admin)
func (h *ReportHandler) DevEarnings(c *gin.Context) {
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}

	rows, err := h.reportService.DevEarningsReport(from, to)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to build earnings report")
		return
	}

	utils.SuccessResponse(c, rows)
}
