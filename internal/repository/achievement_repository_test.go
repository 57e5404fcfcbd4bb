package repository

import (
	"testing"
	"time"
)

func TestAwardAndHasEarned(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewAchievementRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	earned, err := repo.HasEarned(account.ID, "first_report")
	if err != nil {
		t.Fatalf("HasEarned failed: %v", err)
	}
	if earned {
		t.Error("Expected no achievements for a new account")
	}

	if err := repo.Award(account.ID, "first_report", now); err != nil {
		t.Fatalf("Award failed: %v", err)
	}

	earned, err = repo.HasEarned(account.ID, "first_report")
	if err != nil {
		t.Fatalf("HasEarned failed: %v", err)
	}
	if !earned {
		t.Error("Expected the achievement to be earned")
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewAchievementRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := repo.Award(account.ID, "first_report", now); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := repo.Award(account.ID, "first_report", now.Add(time.Hour)); err != nil {
		t.Fatalf("Repeat award failed: %v", err)
	}

	count, err := repo.CountEarned(account.ID)
	if err != nil {
		t.Fatalf("CountEarned failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 earned achievement, got %d", count)
	}
}

func TestEarnedIDsAndListEarned(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewAchievementRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := repo.Award(account.ID, "first_report", base); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := repo.Award(account.ID, "sharp_eye", base.Add(time.Hour)); err != nil {
		t.Fatalf("Award failed: %v", err)
	}

	earned, err := repo.EarnedIDs(account.ID)
	if err != nil {
		t.Fatalf("EarnedIDs failed: %v", err)
	}
	if len(earned) != 2 || !earned["first_report"] || !earned["sharp_eye"] {
		t.Errorf("Unexpected earned set: %v", earned)
	}

	rows, err := repo.ListEarned(account.ID)
	if err != nil {
		t.Fatalf("ListEarned failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].AchievementID != "sharp_eye" {
		t.Errorf("Expected newest first, got %s", rows[0].AchievementID)
	}
}

func TestHoldersCount(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewAchievementRepository(db)

	a := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	b := createTestAccount(t, accounts, "b@example.com", "Shelbyville", 0)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := repo.Award(a.ID, "first_report", now); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := repo.Award(b.ID, "first_report", now); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := repo.Award(a.ID, "sharp_eye", now); err != nil {
		t.Fatalf("Award failed: %v", err)
	}

	count, err := repo.HoldersCount("first_report")
	if err != nil {
		t.Fatalf("HoldersCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 holders, got %d", count)
	}

	count, err = repo.HoldersCount("drone_operator")
	if err != nil {
		t.Fatalf("HoldersCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 holders, got %d", count)
	}
}
