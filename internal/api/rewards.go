package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/internal/service/rewards"
)

// GetAchievementCatalog returns all achievement definitions.
// GET /api/v1/achievements.
func (h *Handler) GetAchievementCatalog(c *gin.Context) {
	defs := h.achievementService.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"achievements": defs,
		"total":        len(defs),
	})
}

// GetRewardCatalog returns all reward definitions.
// GET /api/v1/rewards.
func (h *Handler) GetRewardCatalog(c *gin.Context) {
	defs := h.rewardService.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"rewards": defs,
		"total":   len(defs),
	})
}

// GetAvailableRewards returns the rewards an account can afford.
// GET /api/v1/rewards/available?account_id=1.
func (h *Handler) GetAvailableRewards(c *gin.Context) {
	accountID, err := h.parseAccountIDQuery(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	available, err := h.rewardService.AvailableFor(accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Uint("account_id", accountID).Msg("Failed to list available rewards")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"rewards":    available,
		"total":      len(available),
	})
}

type redeemRequest struct {
	AccountID uint `json:"account_id" binding:"required"`
}

// RedeemReward redeems a reward for an account. The outcome is always a
// tagged result; failed decisions map to 404 (unknown reward) or 409.
// POST /api/v1/rewards/:id/redeem.
func (h *Handler) RedeemReward(c *gin.Context) {
	rewardID := c.Param("id")

	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.rewardService.Redeem(req.AccountID, rewardID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).
			Uint("account_id", req.AccountID).
			Str("reward", rewardID).
			Msg("Failed to redeem reward")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to redeem reward")
		return
	}

	status := http.StatusOK
	if !result.Success {
		if result.FailureCode == rewards.FailureNotFound {
			status = http.StatusNotFound
		} else {
			status = http.StatusConflict
		}
	}
	c.JSON(status, gin.H{
		"result":       result,
		"generated_at": time.Now().UTC(),
	})
}

// GetLeaderboard returns the top accounts by points.
// GET /api/v1/leaderboard?limit=50&city=.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	city := c.Query("city")

	entries, err := h.leaderboardService.Top(c.Request.Context(), city, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"city":          city,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}
