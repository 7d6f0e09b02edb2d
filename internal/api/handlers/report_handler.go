package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hasmart/retail-ingest/internal/service"
)

const defaultReportWindow = 30 * 24 * time.Hour

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// parseRange reads from/to query params as YYYY-MM-DD dates. The upper bound
// is exclusive, so "to" is bumped by one day to include that whole day.
// Defaults to the trailing 30 days.
func (h *ReportHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.Add(-defaultReportWindow)
	to := now.Add(24 * time.Hour)

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}

	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed.Add(24 * time.Hour)
	}

	if !to.After(from) {
		errorResponse(c, http.StatusBadRequest, "to must not precede from")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}

func (h *ReportHandler) GetPurchases(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	rows, err := h.service.Purchases(c.Request.Context(), from, to)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func (h *ReportHandler) GetSales(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	rows, err := h.service.Sales(c.Request.Context(), from, to)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func (h *ReportHandler) GetItems(c *gin.Context) {
	rows, err := h.service.Items(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func (h *ReportHandler) GetSummary(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	sum, err := h.service.Summary(c.Request.Context(), from, to)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, sum)
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
