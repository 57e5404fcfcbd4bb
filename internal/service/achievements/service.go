// Package achievements evaluates accounts against the achievement catalog
// and awards newly earned milestones. Awarding is monotonic and idempotent:
// an earned achievement is never re-awarded and never revoked, even when
// the counters later fall below the requirement.
package achievements

import (
	"fmt"
	"time"

	"github.com/urbansignal/billboard-watch/internal/catalog"
	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

// minReportsForAccuracy gates the accuracy achievement so a single lucky
// report cannot unlock it.
const minReportsForAccuracy = 20

// AchievementRepository is the persistence surface for earned achievements.
type AchievementRepository interface {
	EarnedIDs(accountID uint) (map[string]bool, error)
	Award(accountID uint, achievementID string, earnedAt time.Time) error
	ListEarned(accountID uint) ([]models.AccountAchievement, error)
	HoldersCount(achievementID string) (int64, error)
}

// CountersRepository provides the counter snapshot an evaluation reads.
type CountersRepository interface {
	Get(accountID uint) (*models.AccountCounters, error)
}

// AccountLister enumerates accounts for bulk evaluation.
type AccountLister interface {
	List(city, role string) ([]models.Account, error)
}

// PointsAwarder credits achievement point rewards.
type PointsAwarder interface {
	Credit(accountID uint, points int, action string) (*models.Account, error)
}

type Service struct {
	catalog      *catalog.Catalog
	achievements AchievementRepository
	counters     CountersRepository
	accounts     AccountLister
	awarder      PointsAwarder
	log          *logger.Logger
}

func NewService(
	cat *catalog.Catalog,
	achievements *repository.AchievementRepository,
	counters *repository.CountersRepository,
	accountsRepo *repository.AccountRepository,
	awarder *accounts.Service,
) *Service {
	return NewServiceWithInterfaces(cat, achievements, counters, accountsRepo, awarder)
}

func NewServiceWithInterfaces(
	cat *catalog.Catalog,
	achievements AchievementRepository,
	counters CountersRepository,
	accountLister AccountLister,
	awarder PointsAwarder,
) *Service {
	return &Service{
		catalog:      cat,
		achievements: achievements,
		counters:     counters,
		accounts:     accountLister,
		awarder:      awarder,
		log:          logger.Get(),
	}
}

// Catalog returns all achievement definitions.
func (s *Service) Catalog() []catalog.Achievement {
	return s.catalog.Achievements()
}

// progressValue maps a requirement type onto the matching counter.
func progressValue(req catalog.Requirement, counters *models.AccountCounters) float64 {
	switch req.Type {
	case catalog.ReqReportsSubmitted:
		return float64(counters.ReportsSubmitted)
	case catalog.ReqMonthlyViolations:
		return float64(counters.MonthlyViolations)
	case catalog.ReqAccuracyRate:
		return counters.AccuracyRate
	case catalog.ReqResolvedReports:
		return float64(counters.ResolvedReports)
	case catalog.ReqAIScans:
		return float64(counters.AIScans)
	case catalog.ReqUniqueLocations:
		return float64(counters.UniqueLocations)
	case catalog.ReqDailyStreak:
		return float64(counters.DailyStreak)
	case catalog.ReqDroneSurveys:
		return float64(counters.DroneSurveys)
	default:
		return 0
	}
}

// qualifies reports whether the counters satisfy an achievement's
// requirement. Accuracy-based achievements need a minimum report volume
// before the rate counts.
func qualifies(def catalog.Achievement, counters *models.AccountCounters) bool {
	if def.Requirement.Type == catalog.ReqAccuracyRate && counters.ReportsSubmitted < minReportsForAccuracy {
		return false
	}
	return progressValue(def.Requirement, counters) >= def.Requirement.Target
}

// EvaluateAccount checks an account against every catalog achievement and
// awards the newly qualifying ones, crediting their point rewards. It
// returns the newly earned definitions; re-running it changes nothing.
func (s *Service) EvaluateAccount(accountID uint) ([]catalog.Achievement, error) {
	earned, err := s.achievements.EarnedIDs(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	counters, err := s.counters.Get(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}

	var newlyEarned []catalog.Achievement
	now := time.Now()
	for _, def := range s.catalog.Achievements() {
		if earned[def.ID] {
			continue
		}
		if !qualifies(def, counters) {
			continue
		}

		if err := s.achievements.Award(accountID, def.ID, now); err != nil {
			return newlyEarned, fmt.Errorf("failed to award achievement %s: %w", def.ID, err)
		}
		if _, err := s.awarder.Credit(accountID, def.Points, "achievement_earned"); err != nil {
			return newlyEarned, fmt.Errorf("failed to credit achievement points: %w", err)
		}

		metrics.RecordAchievementAwarded(def.ID)
		if holders, err := s.achievements.HoldersCount(def.ID); err == nil {
			metrics.SetAchievementHolders(def.ID, int(holders))
		}
		s.log.Info().
			Uint("account_id", accountID).
			Str("achievement", def.ID).
			Int("points", def.Points).
			Msg("Achievement earned")
		newlyEarned = append(newlyEarned, def)
	}

	return newlyEarned, nil
}

// EvaluateAll runs an evaluation for every account, returning the total
// number of newly awarded achievements. Per-account failures are logged
// and skipped so one broken account does not stall the sweep.
func (s *Service) EvaluateAll() (int, error) {
	start := time.Now()
	list, err := s.accounts.List("", "")
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	awarded := 0
	for _, account := range list {
		newlyEarned, err := s.EvaluateAccount(account.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("account_id", account.ID).Msg("Achievement evaluation failed")
			continue
		}
		awarded += len(newlyEarned)
	}

	s.log.Info().
		Int("accounts", len(list)).
		Int("awarded", awarded).
		Dur("duration", time.Since(start)).
		Msg("Achievement evaluation sweep completed")
	return awarded, nil
}

// Progress describes an account's standing against one achievement.
type Progress struct {
	Achievement catalog.Achievement `json:"achievement"`
	Earned      bool                `json:"earned"`
	EarnedAt    *time.Time          `json:"earned_at,omitempty"`
	Current     float64             `json:"current"`
	Target      float64             `json:"target"`
}

// AccountProgress joins the catalog against an account's earned rows and
// counters, giving the full per-achievement standing.
func (s *Service) AccountProgress(accountID uint) ([]Progress, error) {
	earnedRows, err := s.achievements.ListEarned(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	earnedAt := make(map[string]time.Time, len(earnedRows))
	for _, row := range earnedRows {
		earnedAt[row.AchievementID] = row.EarnedAt
	}

	counters, err := s.counters.Get(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}

	defs := s.catalog.Achievements()
	out := make([]Progress, 0, len(defs))
	for _, def := range defs {
		p := Progress{
			Achievement: def,
			Current:     progressValue(def.Requirement, counters),
			Target:      def.Requirement.Target,
		}
		if at, ok := earnedAt[def.ID]; ok {
			p.Earned = true
			t := at
			p.EarnedAt = &t
		}
		out = append(out, p)
	}
	return out, nil
}
