package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/urbansignal/billboard-watch/internal/models"
	"gorm.io/gorm"
)

// AchievementRepository handles per-account achievement progress rows.
// Achievement definitions live in the static catalog, not the database.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// HasEarned checks if an account has earned a specific achievement.
func (r *AchievementRepository) HasEarned(accountID uint, achievementID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.AccountAchievement{}).
		Where("account_id = ? AND achievement_id = ?", accountID, achievementID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check achievement %s for account %d: %w", achievementID, accountID, err)
	}
	return count > 0, nil
}

// EarnedIDs returns the set of achievement ids the account has earned.
func (r *AchievementRepository) EarnedIDs(accountID uint) (map[string]bool, error) {
	var rows []models.AccountAchievement
	err := r.db.
		Where("account_id = ?", accountID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get earned achievements for account %d: %w", accountID, err)
	}

	earned := make(map[string]bool, len(rows))
	for _, row := range rows {
		earned[row.AchievementID] = true
	}
	return earned, nil
}

// Award records an earned achievement. Idempotent: awarding an already
// earned achievement is a no-op.
func (r *AchievementRepository) Award(accountID uint, achievementID string, earnedAt time.Time) error {
	exists, err := r.HasEarned(accountID, achievementID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	row := &models.AccountAchievement{
		AccountID:     accountID,
		AchievementID: achievementID,
		EarnedAt:      earnedAt,
	}
	if err := r.db.Create(row).Error; err != nil {
		// A concurrent award may have won the race; the unique index makes
		// that equivalent to the idempotent no-op above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to award achievement %s to account %d: %w", achievementID, accountID, err)
	}
	return nil
}

// ListEarned retrieves the account's earned achievements, newest first.
func (r *AchievementRepository) ListEarned(accountID uint) ([]models.AccountAchievement, error) {
	var rows []models.AccountAchievement
	err := r.db.
		Where("account_id = ?", accountID).
		Order("earned_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for account %d: %w", accountID, err)
	}
	return rows, nil
}

// CountEarned returns the number of achievements an account has earned.
func (r *AchievementRepository) CountEarned(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AccountAchievement{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count achievements for account %d: %w", accountID, err)
	}
	return count, nil
}

// HoldersCount returns the number of accounts holding an achievement.
func (r *AchievementRepository) HoldersCount(achievementID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.AccountAchievement{}).
		Where("achievement_id = ?", achievementID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count holders of achievement %s: %w", achievementID, err)
	}
	return count, nil
}
