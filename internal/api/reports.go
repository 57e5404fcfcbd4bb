package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/reports"
)

type createReportRequest struct {
	AccountID  uint            `json:"account_id" binding:"required"`
	Location   string          `json:"location" binding:"required"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	ImageURL   string          `json:"image_url"`
	Violations []string        `json:"violations"`
	Severity   string          `json:"severity" binding:"required"`
	Analysis   json.RawMessage `json:"analysis"`
}

// CreateReport submits a violation report, credits the severity points,
// and runs an achievement evaluation for the submitter.
// POST /api/v1/reports.
func (h *Handler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reportService.Create(reports.CreateInput{
		AccountID:  req.AccountID,
		Location:   req.Location,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		ImageURL:   req.ImageURL,
		Violations: req.Violations,
		Severity:   req.Severity,
		Analysis:   req.Analysis,
	})
	if err != nil {
		if errors.Is(err, reports.ErrInvalidSeverity) {
			h.errorResponse(c, http.StatusBadRequest, "invalid severity: "+req.Severity)
			return
		}
		h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Failed to create report")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to create report")
		return
	}

	newlyEarned, err := h.achievementService.EvaluateAccount(req.AccountID)
	if err != nil {
		// The report is already committed; an evaluation failure only
		// delays awards until the next scheduled sweep.
		h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Post-report achievement evaluation failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"report":       report,
		"newly_earned": newlyEarned,
	})
}

// GetReport returns a single report.
// GET /api/v1/reports/:id.
func (h *Handler) GetReport(c *gin.Context) {
	reportID, err := h.parseReportID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reportService.Get(reportID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Report not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListReports returns reports matching the query filters.
// GET /api/v1/reports?account_id=&status=&severity=&limit=50.
func (h *Handler) ListReports(c *gin.Context) {
	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	filters := repository.ListFilters{
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		Limit:    limit,
	}
	if idStr := c.Query("account_id"); idStr != "" {
		accountID, err := h.parseAccountIDQuery(c)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		filters.AccountID = accountID
	}
	if filters.Status != "" && !models.ValidReportStatus(filters.Status) {
		h.errorResponse(c, http.StatusBadRequest, "invalid status: "+filters.Status)
		return
	}
	if filters.Severity != "" && !models.ValidSeverity(filters.Severity) {
		h.errorResponse(c, http.StatusBadRequest, "invalid severity: "+filters.Severity)
		return
	}

	list, err := h.reportService.List(filters)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reports")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": list,
		"total":   len(list),
	})
}

// GetReportStats returns report counts by status.
// GET /api/v1/reports/stats.
func (h *Handler) GetReportStats(c *gin.Context) {
	stats, err := h.reportService.Stats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get report stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve report statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type updateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	ReviewerID uint   `json:"reviewer_id" binding:"required"`
}

// UpdateReportStatus moves a report through its lifecycle. Only accounts
// with the official role may review reports.
// PATCH /api/v1/reports/:id/status.
func (h *Handler) UpdateReportStatus(c *gin.Context) {
	reportID, err := h.parseReportID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	reviewer, err := h.accountService.Get(req.ReviewerID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Reviewer account not found")
		return
	}
	if !reviewer.IsOfficial() {
		h.errorResponse(c, http.StatusForbidden, "Only officials may review reports")
		return
	}

	report, err := h.reportService.UpdateStatus(reportID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "Report not found")
		case errors.Is(err, reports.ErrInvalidStatus):
			h.errorResponse(c, http.StatusBadRequest, "invalid status: "+req.Status)
		case errors.Is(err, reports.ErrInvalidTransition):
			h.errorResponse(c, http.StatusConflict, err.Error())
		default:
			h.log.Error().Err(err).Uint("report_id", reportID).Msg("Failed to update report status")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to update report status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
