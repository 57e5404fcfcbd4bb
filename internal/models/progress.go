package models

import (
	"time"
)

// AccountAchievement represents an achievement earned by an account.
// The achievement definitions themselves are read-only catalog entries;
// only the earned state lives here. Earning is monotonic: rows are
// created once and never reverted.
type AccountAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uint      `gorm:"not null;index:idx_account_achievement,unique" json:"account_id"`
	Account       Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	AchievementID string    `gorm:"size:100;not null;index:idx_account_achievement,unique" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for AccountAchievement model.
func (AccountAchievement) TableName() string {
	return "account_achievements"
}

// Redemption records a committed reward redemption.
type Redemption struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AccountID    uint      `gorm:"not null;index" json:"account_id"`
	Account      Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	RewardID     string    `gorm:"size:100;not null;index" json:"reward_id"`
	PointsSpent  int       `gorm:"not null" json:"points_spent"`
	BalanceAfter int       `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Redemption model.
func (Redemption) TableName() string {
	return "redemptions"
}
