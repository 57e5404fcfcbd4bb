package repository

import (
	"fmt"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// RedemptionRepository handles reward redemption records.
type RedemptionRepository struct {
	db *DB
}

// NewRedemptionRepository creates a new redemption repository.
func NewRedemptionRepository(db *DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// Create records a committed redemption.
func (r *RedemptionRepository) Create(redemption *models.Redemption) error {
	if err := r.db.Create(redemption).Error; err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

// ListByAccount retrieves an account's redemptions, newest first.
func (r *RedemptionRepository) ListByAccount(accountID uint) ([]models.Redemption, error) {
	var rows []models.Redemption
	err := r.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions for account %d: %w", accountID, err)
	}
	return rows, nil
}
