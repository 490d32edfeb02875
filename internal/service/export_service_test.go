package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/export"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/storage"
)

type exportCourseStub struct{}

func (exportCourseStub) ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return []models.Course{
		{ID: "course-1", Name: "Go Fundamentals", BatchCode: "GO-2024-01", Type: models.CourseTypeOnsite, StartDate: &start},
	}, nil
}

func (exportCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return &models.Course{ID: id, Name: "Go Fundamentals", BatchCode: "GO-2024-01", Type: models.CourseTypeOnsite, StartDate: &start}, nil
}

type exportEnrollmentStub struct{}

func (exportEnrollmentStub) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	detail := models.EnrollmentDetail{
		Enrollment: models.Enrollment{
			ID:                "enr-1",
			StudentID:         "stu-1",
			CourseID:          "course-1",
			ApprovalStatus:    models.StatusValue(models.ApprovalApproved),
			EligibilityStatus: models.StatusValue(models.EligibilityEligible),
			CompletionStatus:  models.StatusValue(models.CompletionCompleted),
			EnrolledAt:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		StudentName: "Alia Rahman",
		CourseName:  "Go Fundamentals",
		BatchCode:   "GO-2024-01",
	}
	return []models.EnrollmentDetail{detail}, 1, nil
}

func (exportEnrollmentStub) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	return []models.Enrollment{
		{
			ID:               "enr-1",
			CourseID:         courseID,
			ApprovalStatus:   models.StatusValue(models.ApprovalApproved),
			CompletionStatus: models.StatusValue(models.CompletionCompleted),
		},
	}, nil
}

type exportAssignmentStub struct{}

func (exportAssignmentStub) ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error) {
	approvedAt := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)
	return []models.MentorAssignmentDetail{
		{
			MentorAssignment: models.MentorAssignment{
				ID:          "asg-1",
				CourseID:    "course-1",
				MentorID:    "mentor-1",
				SessionCost: 1500,
				State:       models.AssignmentStateApproved,
				ApprovedAt:  &approvedAt,
			},
			MentorName: "Farhan Kabir",
			CourseName: "Go Fundamentals",
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(exportCourseStub{}, exportEnrollmentStub{}, exportAssignmentStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeEnrollment,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-2",
		Type:      models.ReportTypeMentorCost,
		Params:    models.ReportJobParams{Format: models.ReportFormatPDF},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceCompletionRespectsWindow(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:   "job-3",
		Type: models.ReportTypeCompletion,
		Params: models.ReportJobParams{
			Period: PeriodMonth,
			Month:  "1",
			Year:   2024,
			Format: models.ReportFormatCSV,
		},
		CreatedBy: "admin",
	}
	dataset, _, err := svc.buildDataset(context.Background(), job)
	require.NoError(t, err)
	// The only course starts in March; the February window excludes it.
	require.Empty(t, dataset.Rows)
}
