// Package leaderboard ranks accounts by points and serves per-account
// stat summaries. Rankings are cached in redis with a short TTL; a stale
// window is acceptable, so point mutations do not invalidate the cache.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urbansignal/billboard-watch/internal/cache"
	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

const defaultLimit = 50

// AccountRepository provides the ranked account listing.
type AccountRepository interface {
	GetByID(id uint) (*models.Account, error)
	ListByPoints(city string, limit int) ([]models.Account, error)
}

// CountersRepository provides the counter block of an account's stats.
type CountersRepository interface {
	Get(accountID uint) (*models.AccountCounters, error)
}

// AchievementReader provides earned achievements for account stats.
type AchievementReader interface {
	ListEarned(accountID uint) ([]models.AccountAchievement, error)
}

// Entry is one leaderboard row. Level and rank are derived from points at
// read time so cached rows can never disagree with the published tables.
type Entry struct {
	Position  int    `json:"position"`
	AccountID uint   `json:"account_id"`
	FullName  string `json:"full_name"`
	City      string `json:"city"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	Rank      string `json:"rank"`
}

// AccountStats is the aggregate view served per account.
type AccountStats struct {
	AccountID    uint                        `json:"account_id"`
	FullName     string                      `json:"full_name"`
	Points       int                         `json:"points"`
	Level        int                         `json:"level"`
	Rank         string                      `json:"rank"`
	Progress     scoring.LevelProgress       `json:"progress"`
	Counters     *models.AccountCounters     `json:"counters"`
	Achievements []models.AccountAchievement `json:"achievements"`
}

type Service struct {
	accounts     AccountRepository
	counters     CountersRepository
	achievements AchievementReader
	cache        cache.Cache
	ttl          time.Duration
	log          *logger.Logger
}

func NewService(
	accounts *repository.AccountRepository,
	counters *repository.CountersRepository,
	achievements *repository.AchievementRepository,
	c cache.Cache,
	ttl time.Duration,
) *Service {
	return NewServiceWithInterfaces(accounts, counters, achievements, c, ttl)
}

func NewServiceWithInterfaces(
	accounts AccountRepository,
	counters CountersRepository,
	achievements AchievementReader,
	c cache.Cache,
	ttl time.Duration,
) *Service {
	return &Service{
		accounts:     accounts,
		counters:     counters,
		achievements: achievements,
		cache:        c,
		ttl:          ttl,
		log:          logger.Get(),
	}
}

func cacheKey(city string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", city, limit)
}

// Top returns the highest-scoring accounts, optionally filtered by city,
// annotated with 1-based positions and derived level and rank.
func (s *Service) Top(ctx context.Context, city string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	key := cacheKey(city, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var entries []Entry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
			// A corrupt cache entry is dropped and rebuilt below.
			s.log.Warn().Str("key", key).Msg("Discarding unreadable leaderboard cache entry")
			if err := s.cache.Del(ctx, key); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Failed to drop leaderboard cache entry")
			}
		}
	}

	accounts, err := s.accounts.ListByPoints(city, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by points: %w", err)
	}

	entries := make([]Entry, len(accounts))
	for i, a := range accounts {
		level, rank := scoring.Derive(a.Points)
		entries[i] = Entry{
			Position:  i + 1,
			AccountID: a.ID,
			FullName:  a.FullName,
			City:      a.City,
			Points:    a.Points,
			Level:     level,
			Rank:      rank,
		}
	}

	metrics.SetLeaderboardSize(len(entries))
	if s.cache != nil {
		payload, err := json.Marshal(entries)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache leaderboard")
			}
		}
	}

	return entries, nil
}

// AccountStats assembles the per-account stats view: account snapshot,
// level progress, counters, and earned achievements.
func (s *Service) AccountStats(accountID uint) (*AccountStats, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	counters, err := s.counters.Get(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}
	earned, err := s.achievements.ListEarned(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	level, rank := scoring.Derive(account.Points)
	return &AccountStats{
		AccountID:    account.ID,
		FullName:     account.FullName,
		Points:       account.Points,
		Level:        level,
		Rank:         rank,
		Progress:     scoring.ProgressToNextLevel(account.Points),
		Counters:     counters,
		Achievements: earned,
	}, nil
}
