// Package reports handles violation report submission and lifecycle.
package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

var (
	ErrNotFound          = errors.New("report not found")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ReportRepository is the persistence surface for reports.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	List(filters repository.ListFilters) ([]models.Report, error)
	UpdateStatus(id uint, status string) error
	HasReportAtLocation(accountID uint, location string) (bool, error)
	Stats() (*models.ReportStats, error)
}

// CountersRepository maintains the per-account counters consumed by
// achievement evaluation.
type CountersRepository interface {
	RecordSubmission(accountID uint, firstTimeLocation bool, violations int, now time.Time) error
	RecordResolved(accountID uint) error
}

// PointsAwarder is the slice of the accounts service the report lifecycle
// needs.
type PointsAwarder interface {
	Credit(accountID uint, points int, action string) (*models.Account, error)
}

type Service struct {
	reports  ReportRepository
	counters CountersRepository
	awarder  PointsAwarder
	log      *logger.Logger
}

func NewService(reports *repository.ReportRepository, counters *repository.CountersRepository, awarder *accounts.Service) *Service {
	return NewServiceWithInterfaces(reports, counters, awarder)
}

func NewServiceWithInterfaces(reports ReportRepository, counters CountersRepository, awarder PointsAwarder) *Service {
	return &Service{
		reports:  reports,
		counters: counters,
		awarder:  awarder,
		log:      logger.Get(),
	}
}

// CreateInput holds the fields accepted when submitting a report.
type CreateInput struct {
	AccountID  uint
	Location   string
	Latitude   float64
	Longitude  float64
	ImageURL   string
	Violations []string
	Severity   string
	Analysis   json.RawMessage
}

// Create persists a new report in pending status, fixes the point award
// from the severity table, credits the submitter, and bumps the account
// counters. The first report from a location counts toward the unique
// locations counter.
func (s *Service) Create(in CreateInput) (*models.Report, error) {
	if !models.ValidSeverity(in.Severity) {
		return nil, ErrInvalidSeverity
	}

	firstTime := false
	seen, err := s.reports.HasReportAtLocation(in.AccountID, in.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to check location history: %w", err)
	}
	firstTime = !seen

	violations, err := json.Marshal(in.Violations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode violations: %w", err)
	}

	points := scoring.PointsForSeverity(in.Severity)
	report := &models.Report{
		AccountID:     in.AccountID,
		Location:      in.Location,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		ImageURL:      in.ImageURL,
		Violations:    violations,
		Severity:      in.Severity,
		Status:        models.ReportStatusPending,
		PointsAwarded: points,
		Analysis:      in.Analysis,
	}
	if err := s.reports.Create(report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	if _, err := s.awarder.Credit(in.AccountID, points, scoring.ActionReportSubmitted); err != nil {
		return nil, fmt.Errorf("failed to credit submission points: %w", err)
	}
	if err := s.counters.RecordSubmission(in.AccountID, firstTime, len(in.Violations), time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update counters: %w", err)
	}

	metrics.RecordReportSubmitted(in.Severity)
	s.log.Info().
		Uint("report_id", report.ID).
		Uint("account_id", in.AccountID).
		Str("severity", in.Severity).
		Int("points", points).
		Bool("first_time_location", firstTime).
		Msg("Report created")
	return report, nil
}

func (s *Service) Get(id uint) (*models.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return report, nil
}

func (s *Service) List(filters repository.ListFilters) ([]models.Report, error) {
	return s.reports.List(filters)
}

func (s *Service) Stats() (*models.ReportStats, error) {
	return s.reports.Stats()
}

// validTransition encodes the report lifecycle: pending can be verified or
// rejected, verified can be resolved, resolved and rejected are terminal.
func validTransition(from, to string) bool {
	switch from {
	case models.ReportStatusPending:
		return to == models.ReportStatusVerified || to == models.ReportStatusRejected
	case models.ReportStatusVerified:
		return to == models.ReportStatusResolved
	default:
		return false
	}
}

// UpdateStatus moves a report through its lifecycle. Verification credits
// the submitter a flat bonus; resolution bumps the resolved counter.
func (s *Service) UpdateStatus(id uint, status string) (*models.Report, error) {
	if !models.ValidReportStatus(status) {
		return nil, ErrInvalidStatus
	}

	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !validTransition(report.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, report.Status, status)
	}

	if err := s.reports.UpdateStatus(id, status); err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}
	report.Status = status

	switch status {
	case models.ReportStatusVerified:
		if _, err := s.awarder.Credit(report.AccountID, scoring.VerificationBonus, scoring.ActionReportVerified); err != nil {
			return nil, fmt.Errorf("failed to credit verification bonus: %w", err)
		}
	case models.ReportStatusResolved:
		if err := s.counters.RecordResolved(report.AccountID); err != nil {
			return nil, fmt.Errorf("failed to update resolved counter: %w", err)
		}
	}

	metrics.RecordStatusTransition(status)
	s.log.Info().
		Uint("report_id", id).
		Str("status", status).
		Msg("Report status updated")
	return report, nil
}
