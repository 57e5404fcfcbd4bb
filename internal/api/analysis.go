package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbansignal/billboard-watch/internal/analysis"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
)

type analyzeImageRequest struct {
	AccountID uint    `json:"account_id"`
	ImageURL  string  `json:"image_url" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AnalyzeImage runs an AI inspection of a billboard image. When an account
// is given, the scan is credited and counted toward achievements.
// POST /api/v1/analysis/image.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	var req analyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.imageAnalyzer.AnalyzeImage(c.Request.Context(), req.ImageURL, req.Latitude, req.Longitude)
	if err != nil {
		h.analysisErrorResponse(c, err)
		return
	}

	pointsAwarded := 0
	if req.AccountID != 0 {
		if _, points, err := h.accountService.AwardPoints(req.AccountID, scoring.ActionAIScanUsed, nil); err != nil {
			h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Failed to credit AI scan")
		} else {
			pointsAwarded = points
		}
		if err := h.usageTracker.RecordAIScan(req.AccountID); err != nil {
			h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Failed to count AI scan")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":       result,
		"points_awarded": pointsAwarded,
	})
}

type droneSurveyRequest struct {
	AccountID uint    `json:"account_id"`
	CenterLat float64 `json:"center_lat" binding:"required"`
	CenterLng float64 `json:"center_lng" binding:"required"`
	RadiusKM  float64 `json:"radius_km"`
	AltitudeM float64 `json:"altitude_m"`
}

// RunDroneSurvey flies a simulated drone survey over an area. When an
// account is given, the completed survey is credited and counted.
// POST /api/v1/analysis/survey.
func (h *Handler) RunDroneSurvey(c *gin.Context) {
	var req droneSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.surveyRunner.RunSurvey(c.Request.Context(), analysis.SurveyArea{
		CenterLat: req.CenterLat,
		CenterLng: req.CenterLng,
		RadiusKM:  req.RadiusKM,
		AltitudeM: req.AltitudeM,
	})
	if err != nil {
		h.analysisErrorResponse(c, err)
		return
	}

	pointsAwarded := 0
	if req.AccountID != 0 {
		if _, points, err := h.accountService.AwardPoints(req.AccountID, scoring.ActionDroneSurveyCompleted, nil); err != nil {
			h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Failed to credit drone survey")
		} else {
			pointsAwarded = points
		}
		if err := h.usageTracker.RecordDroneSurvey(req.AccountID); err != nil {
			h.log.Error().Err(err).Uint("account_id", req.AccountID).Msg("Failed to count drone survey")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"survey":         result,
		"points_awarded": pointsAwarded,
	})
}

// analysisErrorResponse maps analysis failures onto HTTP statuses: rate
// limits to 429 with the suggested wait, everything else to 502.
func (h *Handler) analysisErrorResponse(c *gin.Context, err error) {
	var apiErr *analysis.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		body := gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		}
		if apiErr.Code == analysis.CodeRateLimited {
			status = http.StatusTooManyRequests
			body["retry_after_seconds"] = int(apiErr.RetryAfter.Seconds())
		}
		c.JSON(status, body)
		return
	}

	h.log.Error().Err(err).Msg("Analysis failed")
	c.JSON(http.StatusBadGateway, gin.H{
		"code":    analysis.CodeAnalysisFailed,
		"message": "Failed to analyze image",
	})
}
