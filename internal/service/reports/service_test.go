package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
)

type mockReportRepository struct {
	reports map[uint]*models.Report
	nextID  uint
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{reports: make(map[uint]*models.Report), nextID: 1}
}

func (m *mockReportRepository) Create(report *models.Report) error {
	report.ID = m.nextID
	m.nextID++
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportRepository) GetByID(id uint) (*models.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *report
	return &copied, nil
}

func (m *mockReportRepository) List(filters repository.ListFilters) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if filters.AccountID != 0 && r.AccountID != filters.AccountID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockReportRepository) UpdateStatus(id uint, status string) error {
	report, ok := m.reports[id]
	if !ok {
		return errors.New("record not found")
	}
	report.Status = status
	return nil
}

func (m *mockReportRepository) HasReportAtLocation(accountID uint, location string) (bool, error) {
	for _, r := range m.reports {
		if r.AccountID == accountID && r.Location == location {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReportRepository) Stats() (*models.ReportStats, error) {
	stats := &models.ReportStats{}
	for _, r := range m.reports {
		stats.Total++
		switch r.Status {
		case models.ReportStatusPending:
			stats.Pending++
		case models.ReportStatusVerified:
			stats.Verified++
		case models.ReportStatusResolved:
			stats.Resolved++
		case models.ReportStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

type submission struct {
	accountID uint
	firstTime bool
}

type mockCountersRepository struct {
	submissions []submission
	resolved    []uint
}

func (m *mockCountersRepository) RecordSubmission(accountID uint, firstTimeLocation bool, violations int, now time.Time) error {
	m.submissions = append(m.submissions, submission{accountID, firstTimeLocation})
	return nil
}

func (m *mockCountersRepository) RecordResolved(accountID uint) error {
	m.resolved = append(m.resolved, accountID)
	return nil
}

type credit struct {
	accountID uint
	points    int
	action    string
}

type mockAwarder struct {
	credits []credit
}

func (m *mockAwarder) Credit(accountID uint, points int, action string) (*models.Account, error) {
	m.credits = append(m.credits, credit{accountID, points, action})
	return &models.Account{ID: accountID}, nil
}

func newTestService() (*Service, *mockReportRepository, *mockCountersRepository, *mockAwarder) {
	repo := newMockReportRepository()
	counters := &mockCountersRepository{}
	awarder := &mockAwarder{}
	return NewServiceWithInterfaces(repo, counters, awarder), repo, counters, awarder
}

func TestCreateAwardsSeverityPoints(t *testing.T) {
	svc, _, counters, awarder := newTestService()

	report, err := svc.Create(CreateInput{
		AccountID:  1,
		Location:   "Main St & 5th Ave",
		Violations: []string{"oversized", "no_permit"},
		Severity:   models.SeverityHigh,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, 75, report.PointsAwarded)

	assert.Len(t, awarder.credits, 1)
	assert.Equal(t, credit{1, 75, "report_submitted"}, awarder.credits[0])

	assert.Len(t, counters.submissions, 1)
	assert.True(t, counters.submissions[0].firstTime)
}

func TestCreateRepeatLocationNotFirstTime(t *testing.T) {
	svc, _, counters, _ := newTestService()

	_, err := svc.Create(CreateInput{AccountID: 1, Location: "Main St", Severity: models.SeverityLow})
	assert.NoError(t, err)
	_, err = svc.Create(CreateInput{AccountID: 1, Location: "Main St", Severity: models.SeverityLow})
	assert.NoError(t, err)

	assert.True(t, counters.submissions[0].firstTime)
	assert.False(t, counters.submissions[1].firstTime)
}

func TestCreateInvalidSeverity(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(CreateInput{AccountID: 1, Location: "Main St", Severity: "catastrophic"})
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestUpdateStatusVerificationBonus(t *testing.T) {
	svc, _, _, awarder := newTestService()

	report, _ := svc.Create(CreateInput{AccountID: 7, Location: "Main St", Severity: models.SeverityMedium})

	updated, err := svc.UpdateStatus(report.ID, models.ReportStatusVerified)
	assert.NoError(t, err)
	assert.Equal(t, models.ReportStatusVerified, updated.Status)

	// Submission credit plus the flat verification bonus.
	assert.Len(t, awarder.credits, 2)
	assert.Equal(t, credit{7, 25, "report_verified"}, awarder.credits[1])
}

func TestUpdateStatusResolvedBumpsCounter(t *testing.T) {
	svc, _, counters, _ := newTestService()

	report, _ := svc.Create(CreateInput{AccountID: 7, Location: "Main St", Severity: models.SeverityMedium})
	_, err := svc.UpdateStatus(report.ID, models.ReportStatusVerified)
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(report.ID, models.ReportStatusResolved)
	assert.NoError(t, err)

	assert.Equal(t, []uint{7}, counters.resolved)
}

func TestUpdateStatusInvalidTransitions(t *testing.T) {
	svc, _, _, _ := newTestService()

	report, _ := svc.Create(CreateInput{AccountID: 1, Location: "Main St", Severity: models.SeverityLow})

	// pending cannot jump straight to resolved
	_, err := svc.UpdateStatus(report.ID, models.ReportStatusResolved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// rejected is terminal
	_, err = svc.UpdateStatus(report.ID, models.ReportStatusRejected)
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(report.ID, models.ReportStatusVerified)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService()

	report, _ := svc.Create(CreateInput{AccountID: 1, Location: "Main St", Severity: models.SeverityLow})
	_, err := svc.UpdateStatus(report.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
