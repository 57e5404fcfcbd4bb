package repository

import (
	"fmt"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// ReportRepository handles report-related database operations.
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report.
func (r *ReportRepository) Create(report *models.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by ID.
func (r *ReportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get report by id %d: %w", id, err)
	}
	return &report, nil
}

// ListFilters holds optional report listing filters.
type ListFilters struct {
	AccountID uint
	Status    string
	Severity  string
	Limit     int
}

// List retrieves reports matching the filters, newest first.
func (r *ReportRepository) List(filters ListFilters) ([]models.Report, error) {
	query := r.db.Model(&models.Report{}).Order("created_at DESC")

	if filters.AccountID != 0 {
		query = query.Where("account_id = ?", filters.AccountID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Severity != "" {
		query = query.Where("severity = ?", filters.Severity)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus updates a report's lifecycle status.
func (r *ReportRepository) UpdateStatus(id uint, status string) error {
	err := r.db.Model(&models.Report{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update status for report %d: %w", id, err)
	}
	return nil
}

// HasReportAtLocation reports whether the account has an earlier report
// with the same location text.
func (r *ReportRepository) HasReportAtLocation(accountID uint, location string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("account_id = ? AND location = ?", accountID, location).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count reports at location: %w", err)
	}
	return count > 0, nil
}

// Stats returns aggregate report counts by status.
func (r *ReportRepository) Stats() (*models.ReportStats, error) {
	var stats models.ReportStats

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.Model(&models.Report{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get report stats: %w", err)
	}

	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.ReportStatusPending:
			stats.Pending = row.Count
		case models.ReportStatusVerified:
			stats.Verified = row.Count
		case models.ReportStatusResolved:
			stats.Resolved = row.Count
		case models.ReportStatusRejected:
			stats.Rejected = row.Count
		}
	}

	return &stats, nil
}
