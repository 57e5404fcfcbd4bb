package models

import (
	"encoding/json"
	"time"
)

// Report severity constants.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report status constants.
const (
	ReportStatusPending  = "pending"
	ReportStatusVerified = "verified"
	ReportStatusResolved = "resolved"
	ReportStatusRejected = "rejected"
)

// Report represents a citizen-submitted billboard violation report.
type Report struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountID     uint            `gorm:"not null;index" json:"account_id"`
	Account       Account         `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Location      string          `gorm:"type:text;not null" json:"location"`
	Latitude      float64         `gorm:"not null" json:"latitude"`
	Longitude     float64         `gorm:"not null" json:"longitude"`
	ImageURL      string          `gorm:"type:text" json:"image_url"`
	Violations    json.RawMessage `gorm:"type:jsonb" json:"violations"` // JSON array of violation descriptions
	Severity      string          `gorm:"size:50;not null;index" json:"severity"`
	Status        string          `gorm:"size:50;not null;index" json:"status"`
	PointsAwarded int             `gorm:"not null" json:"points_awarded"` // fixed at creation by severity
	Analysis      json.RawMessage `gorm:"type:jsonb" json:"analysis,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Report model.
func (Report) TableName() string {
	return "reports"
}

// IsTerminal reports whether the report's status admits no further transitions.
func (r *Report) IsTerminal() bool {
	return r.Status == ReportStatusResolved || r.Status == ReportStatusRejected
}

// ValidSeverity reports whether s is one of the known severities.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidReportStatus reports whether s is one of the known lifecycle statuses.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusVerified, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// ReportStats holds aggregate report counts for the admin dashboard.
type ReportStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Resolved int64 `json:"resolved"`
	Rejected int64 `json:"rejected"`
}
