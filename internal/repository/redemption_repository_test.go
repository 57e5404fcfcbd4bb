package repository

import (
	"testing"
	"time"

	"github.com/urbansignal/billboard-watch/internal/models"
)

func TestRedemptionCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewRedemptionRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 800)
	other := createTestAccount(t, accounts, "b@example.com", "Springfield", 300)

	first := &models.Redemption{
		AccountID:    account.ID,
		RewardID:     "coffee_discount",
		PointsSpent:  100,
		BalanceAfter: 700,
		CreatedAt:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	second := &models.Redemption{
		AccountID:    account.ID,
		RewardID:     "movie_ticket",
		PointsSpent:  500,
		BalanceAfter: 200,
		CreatedAt:    time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rows, err := repo.ListByAccount(account.ID)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 redemptions, got %d", len(rows))
	}
	if rows[0].RewardID != "movie_ticket" || rows[0].BalanceAfter != 200 {
		t.Errorf("Expected newest first, got %+v", rows[0])
	}

	empty, err := repo.ListByAccount(other.ID)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no redemptions for other account, got %d", len(empty))
	}
}
