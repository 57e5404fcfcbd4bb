// Package api provides the REST handlers for the billboard watch service:
// accounts, reports, achievements, rewards, the leaderboard, and the
// analysis endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urbansignal/billboard-watch/internal/analysis"
	"github.com/urbansignal/billboard-watch/internal/catalog"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/internal/service/achievements"
	"github.com/urbansignal/billboard-watch/internal/service/leaderboard"
	"github.com/urbansignal/billboard-watch/internal/service/reports"
	"github.com/urbansignal/billboard-watch/internal/service/rewards"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

// AccountService interface for account operations.
type AccountService interface {
	Create(in accounts.CreateInput) (*models.Account, error)
	Get(id uint) (*models.Account, error)
	Progress(accountID uint) (*models.Account, scoring.LevelProgress, error)
	PointsHistory(accountID uint, limit int) ([]models.PointsEntry, error)
	AwardPoints(accountID uint, action string, details *scoring.ActionDetails) (*models.Account, int, error)
}

// ReportService interface for report lifecycle operations.
type ReportService interface {
	Create(in reports.CreateInput) (*models.Report, error)
	Get(id uint) (*models.Report, error)
	List(filters repository.ListFilters) ([]models.Report, error)
	Stats() (*models.ReportStats, error)
	UpdateStatus(id uint, status string) (*models.Report, error)
}

// AchievementService interface for achievement operations.
type AchievementService interface {
	Catalog() []catalog.Achievement
	AccountProgress(accountID uint) ([]achievements.Progress, error)
	EvaluateAccount(accountID uint) ([]catalog.Achievement, error)
}

// RewardService interface for reward operations.
type RewardService interface {
	Catalog() []catalog.Reward
	AvailableFor(accountID uint) ([]catalog.Reward, error)
	Redeem(accountID uint, rewardID string) (rewards.Result, error)
	History(accountID uint) ([]models.Redemption, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	Top(ctx context.Context, city string, limit int) ([]leaderboard.Entry, error)
	AccountStats(accountID uint) (*leaderboard.AccountStats, error)
}

// UsageTracker records analysis tool usage against account counters.
type UsageTracker interface {
	RecordAIScan(accountID uint) error
	RecordDroneSurvey(accountID uint) error
}

// HealthChecker reports the liveness of a backing store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles all API requests.
type Handler struct {
	accountService     AccountService
	reportService      ReportService
	achievementService AchievementService
	rewardService      RewardService
	leaderboardService LeaderboardService
	imageAnalyzer      analysis.ImageAnalyzer
	surveyRunner       analysis.SurveyRunner
	usageTracker       UsageTracker
	dbHealth           HealthChecker
	cacheHealth        HealthChecker
	log                *logger.Logger
}

// Dependencies bundles everything the handler needs.
type Dependencies struct {
	Accounts     AccountService
	Reports      ReportService
	Achievements AchievementService
	Rewards      RewardService
	Leaderboard  LeaderboardService
	Analyzer     analysis.ImageAnalyzer
	Surveyor     analysis.SurveyRunner
	UsageTracker UsageTracker
	DBHealth     HealthChecker
	CacheHealth  HealthChecker
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies, log *logger.Logger) *Handler {
	return &Handler{
		accountService:     deps.Accounts,
		reportService:      deps.Reports,
		achievementService: deps.Achievements,
		rewardService:      deps.Rewards,
		leaderboardService: deps.Leaderboard,
		imageAnalyzer:      deps.Analyzer,
		surveyRunner:       deps.Surveyor,
		usageTracker:       deps.UsageTracker,
		dbHealth:           deps.DBHealth,
		cacheHealth:        deps.CacheHealth,
		log:                log,
	}
}

// RegisterRoutes attaches all endpoints under /api/v1 plus /health.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/accounts", h.CreateAccount)
		v1.GET("/accounts/:id", h.GetAccount)
		v1.GET("/accounts/:id/stats", h.GetAccountStats)
		v1.GET("/accounts/:id/points", h.GetPointsHistory)
		v1.POST("/accounts/:id/actions", h.RecordAction)
		v1.GET("/accounts/:id/achievements", h.GetAccountAchievements)
		v1.POST("/accounts/:id/achievements/evaluate", h.EvaluateAchievements)
		v1.GET("/accounts/:id/redemptions", h.GetRedemptionHistory)

		v1.POST("/reports", h.CreateReport)
		v1.GET("/reports", h.ListReports)
		v1.GET("/reports/stats", h.GetReportStats)
		v1.GET("/reports/:id", h.GetReport)
		v1.PATCH("/reports/:id/status", h.UpdateReportStatus)

		v1.GET("/achievements", h.GetAchievementCatalog)
		v1.GET("/rewards", h.GetRewardCatalog)
		v1.GET("/rewards/available", h.GetAvailableRewards)
		v1.POST("/rewards/:id/redeem", h.RedeemReward)

		v1.GET("/leaderboard", h.GetLeaderboard)

		v1.POST("/analysis/image", h.AnalyzeImage)
		v1.POST("/analysis/survey", h.RunDroneSurvey)
	}
}

// Health reports service liveness including backing stores.
// GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if h.dbHealth != nil {
		if err := h.dbHealth.Health(ctx); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}
	if h.cacheHealth != nil {
		if err := h.cacheHealth.Health(ctx); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "up"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// Helper functions

// parseAccountID extracts and validates the account ID from the URL parameter.
func (h *Handler) parseAccountID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid account ID: %s", idStr)
	}
	return uint(id), nil
}

// parseReportID extracts and validates the report ID from the URL parameter.
func (h *Handler) parseReportID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid report ID: %s", idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// parseAccountIDQuery extracts the account_id query parameter.
func (h *Handler) parseAccountIDQuery(c *gin.Context) (uint, error) {
	idStr := c.Query("account_id")
	if idStr == "" {
		return 0, fmt.Errorf("account_id parameter is required")
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid account_id: %s", idStr)
	}
	return uint(id), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
