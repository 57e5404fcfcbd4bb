// Package catalog provides the static achievement and reward definitions.
//
// Definitions are read-only: per-account progress (earned achievements,
// redemptions) is stored separately and joined by id, so catalog entries
// are never mutated and can be shared safely across accounts.
package catalog

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed achievements.yaml
var achievementsYAML []byte

//go:embed rewards.yaml
var rewardsYAML []byte

// Achievement requirement counter types.
const (
	ReqReportsSubmitted  = "reports_submitted"
	ReqMonthlyViolations = "monthly_violations"
	ReqAccuracyRate      = "accuracy_rate"
	ReqResolvedReports   = "resolved_reports"
	ReqAIScans           = "ai_scans"
	ReqUniqueLocations   = "unique_locations"
	ReqDailyStreak       = "daily_streak"
	ReqDroneSurveys      = "drone_surveys"
)

// Reward types.
const (
	RewardTypeDiscount    = "discount"
	RewardTypeVoucher     = "voucher"
	RewardTypeBadge       = "badge"
	RewardTypeCertificate = "certificate"
)

// Requirement is the single unlock condition of an achievement:
// a named counter and the threshold it must reach.
type Requirement struct {
	Type   string  `yaml:"type" json:"type"`
	Target float64 `yaml:"target" json:"target"`
}

// Achievement is a one-time unlockable milestone definition.
type Achievement struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Icon        string      `yaml:"icon" json:"icon"`
	Points      int         `yaml:"points" json:"points"`
	Category    string      `yaml:"category" json:"category"` // reporting, accuracy, community, special
	Rarity      string      `yaml:"rarity" json:"rarity"`     // common, rare, epic, legendary
	Requirement Requirement `yaml:"requirement" json:"requirement"`
}

// Reward is a redeemable item definition.
type Reward struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Type        string     `yaml:"type" json:"type"`
	Value       string     `yaml:"value" json:"value"`
	PointsCost  int        `yaml:"points_cost" json:"points_cost"`
	ExpiryDate  *time.Time `yaml:"expiry_date" json:"expiry_date,omitempty"`
	Terms       []string   `yaml:"terms" json:"terms,omitempty"`
}

// Expired reports whether the reward's expiry date, if any, has passed.
func (r *Reward) Expired(now time.Time) bool {
	return r.ExpiryDate != nil && now.After(*r.ExpiryDate)
}

// Catalog holds the loaded definitions, indexed for lookup.
type Catalog struct {
	achievements []Achievement
	rewards      []Reward
	rewardByID   map[string]*Reward
}

type achievementsFile struct {
	Achievements []Achievement `yaml:"achievements"`
}

type rewardsFile struct {
	Rewards []Reward `yaml:"rewards"`
}

// Load parses the embedded catalog files.
func Load() (*Catalog, error) {
	var af achievementsFile
	if err := yaml.Unmarshal(achievementsYAML, &af); err != nil {
		return nil, fmt.Errorf("failed to parse achievements catalog: %w", err)
	}

	var rf rewardsFile
	if err := yaml.Unmarshal(rewardsYAML, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rewards catalog: %w", err)
	}

	c := &Catalog{
		achievements: af.Achievements,
		rewards:      rf.Rewards,
		rewardByID:   make(map[string]*Reward, len(rf.Rewards)),
	}
	for i := range c.rewards {
		c.rewardByID[c.rewards[i].ID] = &c.rewards[i]
	}

	return c, nil
}

// Achievements returns all achievement definitions.
func (c *Catalog) Achievements() []Achievement {
	return c.achievements
}

// AchievementsByCategory returns achievement definitions in a category.
func (c *Catalog) AchievementsByCategory(category string) []Achievement {
	var out []Achievement
	for _, a := range c.achievements {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Rewards returns all reward definitions.
func (c *Catalog) Rewards() []Reward {
	return c.rewards
}

// RewardByID returns the reward definition with the given id, or nil.
func (c *Catalog) RewardByID(id string) *Reward {
	return c.rewardByID[id]
}
