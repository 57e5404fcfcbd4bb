package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
)

type createAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Role     string `json:"role"`
}

// CreateAccount registers a new citizen account.
// POST /api/v1/accounts.
func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role != "" && req.Role != models.RoleCitizen && req.Role != models.RoleOfficial {
		h.errorResponse(c, http.StatusBadRequest, "invalid role: "+req.Role)
		return
	}

	account, err := h.accountService.Create(accounts.CreateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		City:     req.City,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			h.errorResponse(c, http.StatusConflict, "Email already registered")
			return
		}
		h.log.Error().Err(err).Msg("Failed to create account")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccount returns an account with its level progress.
// GET /api/v1/accounts/:id.
func (h *Handler) GetAccount(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	account, progress, err := h.accountService.Progress(accountID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Account not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":  account,
		"progress": progress,
	})
}

// GetAccountStats returns the aggregate stats view for an account.
// GET /api/v1/accounts/:id/stats.
func (h *Handler) GetAccountStats(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.leaderboardService.AccountStats(accountID)
	if err != nil {
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to get account stats")
		h.errorResponse(c, http.StatusNotFound, "Account not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

// GetPointsHistory returns the recent point ledger entries for an account.
// GET /api/v1/accounts/:id/points?limit=50.
func (h *Handler) GetPointsHistory(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.accountService.PointsHistory(accountID, limit)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to get points history")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve points history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"entries":    entries,
		"total":      len(entries),
	})
}

type recordActionRequest struct {
	Action            string `json:"action" binding:"required"`
	Severity          string `json:"severity"`
	FirstTimeLocation bool   `json:"first_time_location"`
}

// RecordAction credits an account for a named point-earning action.
// POST /api/v1/accounts/:id/actions.
func (h *Handler) RecordAction(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req recordActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Severity != "" && !models.ValidSeverity(req.Severity) {
		h.errorResponse(c, http.StatusBadRequest, "invalid severity: "+req.Severity)
		return
	}

	account, points, err := h.accountService.AwardPoints(accountID, req.Action, &scoring.ActionDetails{
		Severity:          req.Severity,
		FirstTimeLocation: req.FirstTimeLocation,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to record action")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to record action")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":        account,
		"action":         req.Action,
		"points_awarded": points,
	})
}

// GetAccountAchievements returns per-achievement progress for an account.
// GET /api/v1/accounts/:id/achievements.
func (h *Handler) GetAccountAchievements(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.achievementService.AccountProgress(accountID)
	if err != nil {
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to get achievement progress")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve achievements")
		return
	}

	earned := 0
	for _, p := range progress {
		if p.Earned {
			earned++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":   accountID,
		"achievements": progress,
		"total_earned": earned,
	})
}

// EvaluateAchievements runs an on-demand evaluation for an account.
// POST /api/v1/accounts/:id/achievements/evaluate.
func (h *Handler) EvaluateAchievements(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	newlyEarned, err := h.achievementService.EvaluateAccount(accountID)
	if err != nil {
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to evaluate achievements")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to evaluate achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":    accountID,
		"newly_earned":  newlyEarned,
		"awarded_count": len(newlyEarned),
	})
}

// GetRedemptionHistory returns an account's committed redemptions.
// GET /api/v1/accounts/:id/redemptions.
func (h *Handler) GetRedemptionHistory(c *gin.Context) {
	accountID, err := h.parseAccountID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.rewardService.History(accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to get redemption history")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve redemptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":  accountID,
		"redemptions": history,
		"total":       len(history),
	})
}
