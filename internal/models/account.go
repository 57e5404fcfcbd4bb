// Package models defines domain models for the billboard watch system.
package models

import (
	"time"
)

// Account roles.
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
)

// Account represents a registered user with a point balance.
//
// Points is the single source of truth; Level and Rank are denormalized
// snapshots overwritten from the scoring functions in the same transaction
// as every point mutation. They must never be incremented independently.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FullName  string    `gorm:"not null;size:255" json:"full_name"`
	Phone     string    `gorm:"size:50" json:"phone"`
	City      string    `gorm:"size:100;index" json:"city"`
	Role      string    `gorm:"size:50;not null" json:"role"` // 'citizen' or 'official'
	Points    int       `gorm:"not null;default:0" json:"points"`
	Level     int       `gorm:"not null;default:0" json:"level"`
	Rank      string    `gorm:"size:50;not null;default:'Newcomer'" json:"rank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account model.
func (Account) TableName() string {
	return "accounts"
}

// IsOfficial reports whether the account belongs to a reviewing authority.
func (a *Account) IsOfficial() bool {
	return a.Role == RoleOfficial
}

// PointsEntry is an append-only ledger row recording a single point mutation.
type PointsEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AccountID    uint      `gorm:"not null;index" json:"account_id"`
	Account      Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Delta        int       `gorm:"not null" json:"delta"` // negative for redemptions
	Action       string    `gorm:"size:100;not null" json:"action"`
	BalanceAfter int       `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for PointsEntry model.
func (PointsEntry) TableName() string {
	return "points_entries"
}

// AccountCounters holds the per-account counters consumed by achievement
// evaluation. Each counter is owned by the service that produces the
// underlying event.
type AccountCounters struct {
	AccountID         uint      `gorm:"primaryKey" json:"account_id"`
	ReportsSubmitted  int       `gorm:"not null;default:0" json:"reports_submitted"`
	MonthlyViolations int       `gorm:"not null;default:0" json:"monthly_violations"`
	AccuracyRate      float64   `gorm:"not null;default:0" json:"accuracy_rate"` // percentage 0-100
	ResolvedReports   int       `gorm:"not null;default:0" json:"resolved_reports"`
	AIScans           int       `gorm:"column:ai_scans;not null;default:0" json:"ai_scans"`
	UniqueLocations   int       `gorm:"not null;default:0" json:"unique_locations"`
	DailyStreak       int       `gorm:"not null;default:0" json:"daily_streak"`
	DroneSurveys      int       `gorm:"not null;default:0" json:"drone_surveys"`
	LastReportDate    time.Time `json:"last_report_date"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for AccountCounters model.
func (AccountCounters) TableName() string {
	return "account_counters"
}
