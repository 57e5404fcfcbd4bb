package repository

import (
	"encoding/json"
	"testing"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// createTestReport creates a test report in the database.
func createTestReport(t *testing.T, repo *ReportRepository, accountID uint, location, severity, status string) *models.Report {
	t.Helper()

	report := &models.Report{
		AccountID:  accountID,
		Location:   location,
		Latitude:   41.7151,
		Longitude:  44.8271,
		Violations: json.RawMessage(`["Billboard exceeds permitted dimensions"]`),
		Severity:   severity,
		Status:     status,
	}
	if err := repo.Create(report); err != nil {
		t.Fatalf("Failed to create test report: %v", err)
	}
	return report
}

func TestReportCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewReportRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	created := createTestReport(t, repo, account.ID, "Main St 12", models.SeverityHigh, models.ReportStatusPending)

	found, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Location != "Main St 12" || found.Severity != models.SeverityHigh {
		t.Errorf("Unexpected report: %+v", found)
	}

	if _, err := repo.GetByID(9999); err == nil {
		t.Error("Expected error for unknown report")
	}
}

func TestReportListFilters(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewReportRepository(db)

	a := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	b := createTestAccount(t, accounts, "b@example.com", "Springfield", 0)

	createTestReport(t, repo, a.ID, "Main St 12", models.SeverityHigh, models.ReportStatusPending)
	createTestReport(t, repo, a.ID, "Oak Ave 3", models.SeverityLow, models.ReportStatusVerified)
	createTestReport(t, repo, b.ID, "Elm Rd 7", models.SeverityHigh, models.ReportStatusVerified)

	all, err := repo.List(ListFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 reports, got %d", len(all))
	}

	byAccount, err := repo.List(ListFilters{AccountID: a.ID})
	if err != nil {
		t.Fatalf("List by account failed: %v", err)
	}
	if len(byAccount) != 2 {
		t.Errorf("Expected 2 reports for account, got %d", len(byAccount))
	}

	verified, err := repo.List(ListFilters{Status: models.ReportStatusVerified})
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if len(verified) != 2 {
		t.Errorf("Expected 2 verified reports, got %d", len(verified))
	}

	highVerified, err := repo.List(ListFilters{Status: models.ReportStatusVerified, Severity: models.SeverityHigh})
	if err != nil {
		t.Fatalf("List by status and severity failed: %v", err)
	}
	if len(highVerified) != 1 || highVerified[0].Location != "Elm Rd 7" {
		t.Errorf("Unexpected combined filter result: %+v", highVerified)
	}

	limited, err := repo.List(ListFilters{Limit: 2})
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 reports with limit, got %d", len(limited))
	}
}

func TestReportUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewReportRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	report := createTestReport(t, repo, account.ID, "Main St 12", models.SeverityHigh, models.ReportStatusPending)

	if err := repo.UpdateStatus(report.ID, models.ReportStatusVerified); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	updated, err := repo.GetByID(report.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != models.ReportStatusVerified {
		t.Errorf("Expected verified status, got %s", updated.Status)
	}
}

func TestHasReportAtLocation(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewReportRepository(db)

	a := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)
	b := createTestAccount(t, accounts, "b@example.com", "Springfield", 0)

	createTestReport(t, repo, a.ID, "Main St 12", models.SeverityHigh, models.ReportStatusPending)

	seen, err := repo.HasReportAtLocation(a.ID, "Main St 12")
	if err != nil {
		t.Fatalf("HasReportAtLocation failed: %v", err)
	}
	if !seen {
		t.Error("Expected the account's own location to be seen")
	}

	// Another account's report does not mark the location as seen.
	seen, err = repo.HasReportAtLocation(b.ID, "Main St 12")
	if err != nil {
		t.Fatalf("HasReportAtLocation failed: %v", err)
	}
	if seen {
		t.Error("Expected another account's location to be unseen")
	}

	seen, err = repo.HasReportAtLocation(a.ID, "Oak Ave 3")
	if err != nil {
		t.Fatalf("HasReportAtLocation failed: %v", err)
	}
	if seen {
		t.Error("Expected a new location to be unseen")
	}
}

func TestReportStats(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewReportRepository(db)

	account := createTestAccount(t, accounts, "a@example.com", "Springfield", 0)

	createTestReport(t, repo, account.ID, "Loc 1", models.SeverityLow, models.ReportStatusPending)
	createTestReport(t, repo, account.ID, "Loc 2", models.SeverityLow, models.ReportStatusPending)
	createTestReport(t, repo, account.ID, "Loc 3", models.SeverityHigh, models.ReportStatusVerified)
	createTestReport(t, repo, account.ID, "Loc 4", models.SeverityCritical, models.ReportStatusResolved)
	createTestReport(t, repo, account.ID, "Loc 5", models.SeverityMedium, models.ReportStatusRejected)

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 5 {
		t.Errorf("Expected 5 total, got %d", stats.Total)
	}
	if stats.Pending != 2 || stats.Verified != 1 || stats.Resolved != 1 || stats.Rejected != 1 {
		t.Errorf("Unexpected status breakdown: %+v", stats)
	}
}
