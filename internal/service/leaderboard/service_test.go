package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/urbansignal/billboard-watch/internal/cache"
	"github.com/urbansignal/billboard-watch/internal/config"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

type mockAccountRepository struct {
	accounts  []models.Account
	listCalls int
}

func (m *mockAccountRepository) GetByID(id uint) (*models.Account, error) {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			return &m.accounts[i], nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *mockAccountRepository) ListByPoints(city string, limit int) ([]models.Account, error) {
	m.listCalls++
	var out []models.Account
	for _, a := range m.accounts {
		if city != "" && a.City != city {
			continue
		}
		out = append(out, a)
	}
	// The fixture is pre-sorted by points descending.
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockCountersRepository struct {
	counters map[uint]*models.AccountCounters
}

func (m *mockCountersRepository) Get(accountID uint) (*models.AccountCounters, error) {
	if c, ok := m.counters[accountID]; ok {
		return c, nil
	}
	return &models.AccountCounters{AccountID: accountID}, nil
}

type mockAchievementReader struct {
	earned map[uint][]models.AccountAchievement
}

func (m *mockAchievementReader) ListEarned(accountID uint) ([]models.AccountAchievement, error) {
	return m.earned[accountID], nil
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}
	c, err := cache.NewRedisCache(&config.RedisConfig{Host: mr.Host(), Port: port}, logger.Get())
	if err != nil {
		t.Fatalf("connect redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func fixtureAccounts() []models.Account {
	return []models.Account{
		{ID: 3, FullName: "Top Scorer", City: "Springfield", Points: 5200},
		{ID: 1, FullName: "Runner Up", City: "Shelbyville", Points: 900},
		{ID: 2, FullName: "Getting Started", City: "Springfield", Points: 40},
	}
}

func TestTopAnnotatesPositionsAndDerivedFields(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	svc := NewServiceWithInterfaces(repo, &mockCountersRepository{}, &mockAchievementReader{}, newTestCache(t), time.Minute)

	entries, err := svc.Top(context.Background(), "", 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, uint(3), entries[0].AccountID)
	assert.Equal(t, "Diamond Legend", entries[0].Rank)
	assert.Equal(t, 26, entries[0].Level)

	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, "Silver Guardian", entries[1].Rank)

	assert.Equal(t, 3, entries[2].Position)
	assert.Equal(t, 0, entries[2].Level)
	assert.Equal(t, "Newcomer", entries[2].Rank)
}

func TestTopCityFilter(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	svc := NewServiceWithInterfaces(repo, &mockCountersRepository{}, &mockAchievementReader{}, newTestCache(t), time.Minute)

	entries, err := svc.Top(context.Background(), "Springfield", 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 2, entries[1].Position)
}

func TestTopServedFromCache(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	svc := NewServiceWithInterfaces(repo, &mockCountersRepository{}, &mockAchievementReader{}, newTestCache(t), time.Minute)

	_, err := svc.Top(context.Background(), "", 10)
	assert.NoError(t, err)
	entries, err := svc.Top(context.Background(), "", 10)
	assert.NoError(t, err)

	assert.Len(t, entries, 3)
	assert.Equal(t, 1, repo.listCalls)
}

func TestTopReplacesCorruptCacheEntry(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	c := newTestCache(t)
	svc := NewServiceWithInterfaces(repo, &mockCountersRepository{}, &mockAchievementReader{}, c, time.Minute)

	ctx := context.Background()
	key := cacheKey("", 10)
	assert.NoError(t, c.Set(ctx, key, "{not json", time.Minute))

	entries, err := svc.Top(ctx, "", 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 1, repo.listCalls)

	// The unreadable entry was dropped and rewritten with the rebuilt board.
	cached, err := c.Get(ctx, key)
	assert.NoError(t, err)
	var restored []Entry
	assert.NoError(t, json.Unmarshal([]byte(cached), &restored))
	assert.Len(t, restored, 3)
}

func TestTopWithoutCache(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	svc := NewServiceWithInterfaces(repo, &mockCountersRepository{}, &mockAchievementReader{}, nil, time.Minute)

	entries, err := svc.Top(context.Background(), "", 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAccountStats(t *testing.T) {
	repo := &mockAccountRepository{accounts: fixtureAccounts()}
	counters := &mockCountersRepository{counters: map[uint]*models.AccountCounters{
		1: {AccountID: 1, ReportsSubmitted: 12, ResolvedReports: 4},
	}}
	reader := &mockAchievementReader{earned: map[uint][]models.AccountAchievement{
		1: {{AccountID: 1, AchievementID: "first_report"}},
	}}
	svc := NewServiceWithInterfaces(repo, counters, reader, nil, time.Minute)

	stats, err := svc.AccountStats(1)
	assert.NoError(t, err)
	assert.Equal(t, 900, stats.Points)
	assert.Equal(t, "Silver Guardian", stats.Rank)
	assert.Equal(t, 5, stats.Level)
	assert.Equal(t, 12, stats.Counters.ReportsSubmitted)
	assert.Len(t, stats.Achievements, 1)
	assert.Equal(t, 5, stats.Progress.CurrentLevel)
}
