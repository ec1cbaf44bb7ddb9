package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestReportService(db *gorm.DB) ReportService {
	return NewReportService(db, repository.NewReportRepository(db))
}

func TestCreateReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestReportService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reporter := createTestUser(t, db, "reporter")
	question := createTestQuestion(t, db, author, "Reported question")

	report, err := svc.Create(ctx, reporter.ID, CreateReportRequest{
		ReportableType: "question",
		ReportableID:   question.ID.String(),
		Reason:         "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportPending, report.Status)
	assert.Equal(t, reporter.ID, report.ReporterID)
}

func TestCreateReportRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestReportService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reporter := createTestUser(t, db, "reporter")
	other := createTestUser(t, db, "other")
	question := createTestQuestion(t, db, author, "Reported twice")

	req := CreateReportRequest{
		ReportableType: "question",
		ReportableID:   question.ID.String(),
		Reason:         "spam",
	}

	_, err := svc.Create(ctx, reporter.ID, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, reporter.ID, req)
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	// A different reporter may still flag the same content.
	_, err = svc.Create(ctx, other.ID, req)
	require.NoError(t, err)
}

func TestCreateReportMissingTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestReportService(db)

	reporter := createTestUser(t, db, "reporter")

	_, err := svc.Create(context.Background(), reporter.ID, CreateReportRequest{
		ReportableType: "answer",
		ReportableID:   uuid.NewString(),
		Reason:         "spam",
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReviewReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestReportService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reporter := createTestUser(t, db, "reporter")
	admin := createTestUser(t, db, "admin")
	question := createTestQuestion(t, db, author, "Under review")

	report, err := svc.Create(ctx, reporter.ID, CreateReportRequest{
		ReportableType: "question",
		ReportableID:   question.ID.String(),
		Reason:         "harassment",
	})
	require.NoError(t, err)

	notes := "verified and removed"
	reviewed, err := svc.Review(ctx, report.ID, admin.ID, ReviewReportRequest{
		Status:     "resolved",
		AdminNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportResolved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewerID)
	assert.Equal(t, admin.ID, *reviewed.ReviewerID)
	assert.NotNil(t, reviewed.ReviewedAt)
}

func TestListReportsByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestReportService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reporter := createTestUser(t, db, "reporter")
	q1 := createTestQuestion(t, db, author, "First flagged")
	q2 := createTestQuestion(t, db, author, "Second flagged")

	first, err := svc.Create(ctx, reporter.ID, CreateReportRequest{
		ReportableType: "question", ReportableID: q1.ID.String(), Reason: "spam",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, reporter.ID, CreateReportRequest{
		ReportableType: "question", ReportableID: q2.ID.String(), Reason: "other",
	})
	require.NoError(t, err)

	_, err = svc.Review(ctx, first.ID, author.ID, ReviewReportRequest{Status: "dismissed"})
	require.NoError(t, err)

	pending, err := svc.List(ctx, "pending", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Total)

	all, err := svc.List(ctx, "all", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	_, err = svc.List(ctx, "bogus", 1, 20)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
