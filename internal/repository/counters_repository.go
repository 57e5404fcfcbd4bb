package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// CountersRepository handles the per-account counters consumed by
// achievement evaluation.
type CountersRepository struct {
	db *DB
}

// NewCountersRepository creates a new counters repository.
func NewCountersRepository(db *DB) *CountersRepository {
	return &CountersRepository{db: db}
}

// Get retrieves the counters for an account, creating a zeroed row if none exists.
func (r *CountersRepository) Get(accountID uint) (*models.AccountCounters, error) {
	var counters models.AccountCounters
	err := r.db.First(&counters, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counters = models.AccountCounters{AccountID: accountID}
		if err := r.db.Create(&counters).Error; err != nil {
			return nil, fmt.Errorf("failed to create counters for account %d: %w", accountID, err)
		}
		return &counters, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get counters for account %d: %w", accountID, err)
	}
	return &counters, nil
}

// RecordSubmission updates the counters affected by a new report:
// submission count, monthly violation count, unique locations, and the
// consecutive-day streak.
func (r *CountersRepository) RecordSubmission(accountID uint, firstTimeLocation bool, violations int, now time.Time) error {
	counters, err := r.Get(accountID)
	if err != nil {
		return err
	}

	counters.ReportsSubmitted++
	counters.MonthlyViolations += violations
	if firstTimeLocation {
		counters.UniqueLocations++
	}

	switch {
	case counters.LastReportDate.IsZero():
		counters.DailyStreak = 1
	case sameDay(counters.LastReportDate, now):
		// Second report on the same day leaves the streak unchanged.
	case sameDay(counters.LastReportDate.AddDate(0, 0, 1), now):
		counters.DailyStreak++
	default:
		counters.DailyStreak = 1
	}
	counters.LastReportDate = now

	return r.save(counters)
}

// RecordResolved increments the resolved-report counter.
func (r *CountersRepository) RecordResolved(accountID uint) error {
	return r.increment(accountID, "resolved_reports")
}

// RecordAIScan increments the AI-scan counter.
func (r *CountersRepository) RecordAIScan(accountID uint) error {
	return r.increment(accountID, "ai_scans")
}

// RecordDroneSurvey increments the drone-survey counter.
func (r *CountersRepository) RecordDroneSurvey(accountID uint) error {
	return r.increment(accountID, "drone_surveys")
}

// SetAccuracyRate overwrites the accuracy-rate percentage.
func (r *CountersRepository) SetAccuracyRate(accountID uint, rate float64) error {
	counters, err := r.Get(accountID)
	if err != nil {
		return err
	}
	counters.AccuracyRate = rate
	return r.save(counters)
}

// ResetMonthlyViolations zeroes the monthly violation counters for all
// accounts. Intended to run from a monthly scheduled job.
func (r *CountersRepository) ResetMonthlyViolations() error {
	err := r.db.Model(&models.AccountCounters{}).
		Where("monthly_violations > 0").
		Update("monthly_violations", 0).Error
	if err != nil {
		return fmt.Errorf("failed to reset monthly violation counters: %w", err)
	}
	return nil
}

func (r *CountersRepository) increment(accountID uint, column string) error {
	// Ensure the row exists before the in-place update.
	if _, err := r.Get(accountID); err != nil {
		return err
	}
	err := r.db.Model(&models.AccountCounters{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment %s for account %d: %w", column, accountID, err)
	}
	return nil
}

func (r *CountersRepository) save(counters *models.AccountCounters) error {
	counters.UpdatedAt = time.Now()
	if err := r.db.Save(counters).Error; err != nil {
		return fmt.Errorf("failed to save counters for account %d: %w", counters.AccountID, err)
	}
	return nil
}

// sameDay reports whether two times fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
