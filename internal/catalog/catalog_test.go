package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cat, err := Load()
	assert.NoError(t, err)
	assert.Len(t, cat.Achievements(), 8)
	assert.Len(t, cat.Rewards(), 5)
}

func TestAchievementDefinitions(t *testing.T) {
	cat, err := Load()
	assert.NoError(t, err)

	byID := make(map[string]Achievement)
	for _, a := range cat.Achievements() {
		byID[a.ID] = a
	}

	first, ok := byID["first_report"]
	assert.True(t, ok)
	assert.Equal(t, 50, first.Points)
	assert.Equal(t, ReqReportsSubmitted, first.Requirement.Type)
	assert.Equal(t, float64(1), first.Requirement.Target)

	accuracy, ok := byID["accuracy_master"]
	assert.True(t, ok)
	assert.Equal(t, ReqAccuracyRate, accuracy.Requirement.Type)
	assert.Equal(t, float64(90), accuracy.Requirement.Target)

	drone, ok := byID["drone_operator"]
	assert.True(t, ok)
	assert.Equal(t, 800, drone.Points)
	assert.Equal(t, ReqDroneSurveys, drone.Requirement.Type)
}

func TestAchievementsByCategory(t *testing.T) {
	cat, err := Load()
	assert.NoError(t, err)

	total := 0
	for _, category := range []string{"reporting", "accuracy", "community", "special"} {
		total += len(cat.AchievementsByCategory(category))
	}
	assert.Equal(t, len(cat.Achievements()), total, "every achievement belongs to a known category")

	assert.Empty(t, cat.AchievementsByCategory("unknown"))
}

func TestRewardByID(t *testing.T) {
	cat, err := Load()
	assert.NoError(t, err)

	coffee := cat.RewardByID("coffee_discount")
	assert.NotNil(t, coffee)
	assert.Equal(t, 100, coffee.PointsCost)

	assert.Nil(t, cat.RewardByID("free_yacht"))
}

func TestRewardExpiry(t *testing.T) {
	cat, err := Load()
	assert.NoError(t, err)

	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	var dated, undated int
	for _, r := range cat.Rewards() {
		if r.ExpiryDate != nil {
			dated++
			assert.False(t, r.Expired(before), "reward %s should be valid before its expiry", r.ID)
			assert.True(t, r.Expired(after), "reward %s should be expired after its expiry", r.ID)
		} else {
			undated++
			assert.False(t, r.Expired(after), "reward %s has no expiry and never expires", r.ID)
		}
	}
	assert.Equal(t, 3, dated)
	assert.Equal(t, 2, undated)
}
