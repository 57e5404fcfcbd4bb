package repository

import (
	"testing"
	"time"

	"github.com/urbansignal/billboard-watch/internal/models"
)

func TestCountersGetCreatesMissingRow(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewCountersRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)

	// Drop the row created alongside the account so Get has to recreate it.
	if err := db.Where("account_id = ?", account.ID).Delete(&models.AccountCounters{}).Error; err != nil {
		t.Fatalf("Failed to delete counters: %v", err)
	}

	counters, err := repo.Get(account.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if counters.AccountID != account.ID || counters.ReportsSubmitted != 0 {
		t.Errorf("Expected fresh zeroed counters, got %+v", counters)
	}
}

func TestRecordSubmissionCounters(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewCountersRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := repo.RecordSubmission(account.ID, true, 3, now); err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}
	if err := repo.RecordSubmission(account.ID, false, 2, now.Add(time.Hour)); err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}

	counters, err := repo.Get(account.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if counters.ReportsSubmitted != 2 {
		t.Errorf("Expected 2 submissions, got %d", counters.ReportsSubmitted)
	}
	if counters.MonthlyViolations != 5 {
		t.Errorf("Expected 5 monthly violations, got %d", counters.MonthlyViolations)
	}
	if counters.UniqueLocations != 1 {
		t.Errorf("Expected 1 unique location, got %d", counters.UniqueLocations)
	}
}

func TestRecordSubmissionStreak(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewCountersRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	streakAfter := func(at time.Time) int {
		t.Helper()
		if err := repo.RecordSubmission(account.ID, false, 1, at); err != nil {
			t.Fatalf("RecordSubmission failed: %v", err)
		}
		counters, err := repo.Get(account.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		return counters.DailyStreak
	}

	if got := streakAfter(day1); got != 1 {
		t.Errorf("Expected streak 1 after first report, got %d", got)
	}
	if got := streakAfter(day1.Add(6 * time.Hour)); got != 1 {
		t.Errorf("Expected streak unchanged on the same day, got %d", got)
	}
	if got := streakAfter(day1.AddDate(0, 0, 1)); got != 2 {
		t.Errorf("Expected streak 2 on the next day, got %d", got)
	}
	if got := streakAfter(day1.AddDate(0, 0, 2)); got != 3 {
		t.Errorf("Expected streak 3 on the day after, got %d", got)
	}
	if got := streakAfter(day1.AddDate(0, 0, 7)); got != 1 {
		t.Errorf("Expected streak reset after a gap, got %d", got)
	}
}

func TestCounterIncrements(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewCountersRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)

	if err := repo.RecordResolved(account.ID); err != nil {
		t.Fatalf("RecordResolved failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.RecordAIScan(account.ID); err != nil {
			t.Fatalf("RecordAIScan failed: %v", err)
		}
	}
	if err := repo.RecordDroneSurvey(account.ID); err != nil {
		t.Fatalf("RecordDroneSurvey failed: %v", err)
	}
	if err := repo.SetAccuracyRate(account.ID, 92.5); err != nil {
		t.Fatalf("SetAccuracyRate failed: %v", err)
	}

	counters, err := repo.Get(account.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if counters.ResolvedReports != 1 {
		t.Errorf("Expected 1 resolved report, got %d", counters.ResolvedReports)
	}
	if counters.AIScans != 3 {
		t.Errorf("Expected 3 AI scans, got %d", counters.AIScans)
	}
	if counters.DroneSurveys != 1 {
		t.Errorf("Expected 1 drone survey, got %d", counters.DroneSurveys)
	}
	if counters.AccuracyRate != 92.5 {
		t.Errorf("Expected accuracy rate 92.5, got %f", counters.AccuracyRate)
	}
}

func TestResetMonthlyViolations(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewCountersRepository(db)

	a := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	b := createTestAccount(t, accounts, "b@example.com", "Shelbyville", 0)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := repo.RecordSubmission(a.ID, false, 4, now); err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}
	if err := repo.RecordSubmission(b.ID, false, 2, now); err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}

	if err := repo.ResetMonthlyViolations(); err != nil {
		t.Fatalf("ResetMonthlyViolations failed: %v", err)
	}

	for _, id := range []uint{a.ID, b.ID} {
		counters, err := repo.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if counters.MonthlyViolations != 0 {
			t.Errorf("Expected reset monthly violations for account %d, got %d", id, counters.MonthlyViolations)
		}
		if counters.ReportsSubmitted != 1 {
			t.Errorf("Expected submission counters untouched for account %d, got %d", id, counters.ReportsSubmitted)
		}
	}
}
