package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// ErrInsufficientPoints is returned when a deduction would drive a
// balance negative.
var ErrInsufficientPoints = errors.New("insufficient points")

// AccountRepository handles account-related database operations.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account together with its zeroed counters row.
func (r *AccountRepository) Create(account *models.Account) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		counters := &models.AccountCounters{AccountID: account.ID}
		return tx.Create(counters).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get account by id %d: %w", id, err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by email.
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to get account by email %s: %w", email, err)
	}
	return &account, nil
}

// Update updates an account.
func (r *AccountRepository) Update(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// List retrieves accounts with optional filters.
func (r *AccountRepository) List(city, role string) ([]models.Account, error) {
	query := r.db.Model(&models.Account{})

	if city != "" {
		query = query.Where("city = ?", city)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListByPoints retrieves accounts ordered by points descending.
// A limit of 0 returns all accounts.
func (r *AccountRepository) ListByPoints(city string, limit int) ([]models.Account, error) {
	query := r.db.Model(&models.Account{}).Order("points DESC, id ASC")

	if city != "" {
		query = query.Where("city = ?", city)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts by points: %w", err)
	}
	return accounts, nil
}

// ApplyPointsDelta atomically applies a point delta to an account, appends
// a ledger entry, and overwrites the denormalized level and rank snapshots
// using the supplied derive function. Deductions that would drive the
// balance negative fail with ErrInsufficientPoints.
func (r *AccountRepository) ApplyPointsDelta(
	accountID uint,
	delta int,
	action string,
	derive func(points int) (level int, rank string),
) (*models.Account, error) {
	var account models.Account

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, accountID).Error; err != nil {
			return err
		}

		newPoints := account.Points + delta
		if newPoints < 0 {
			return ErrInsufficientPoints
		}

		account.Points = newPoints
		account.Level, account.Rank = derive(newPoints)
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		entry := &models.PointsEntry{
			AccountID:    accountID,
			Delta:        delta,
			Action:       action,
			BalanceAfter: newPoints,
			CreatedAt:    time.Now(),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientPoints) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply points delta for account %d: %w", accountID, err)
	}

	return &account, nil
}

// GetPointsHistory retrieves the ledger entries for an account, newest first.
func (r *AccountRepository) GetPointsHistory(accountID uint, limit int) ([]models.PointsEntry, error) {
	query := r.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.PointsEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get points history for account %d: %w", accountID, err)
	}
	return entries, nil
}
