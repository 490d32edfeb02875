package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/export"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/storage"
)

type exportCourseReader interface {
	ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type exportEnrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
}

type exportAssignmentReader interface {
	ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	courses     exportCourseReader
	enrollments exportEnrollmentReader
	assignments exportAssignmentReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	now         func() time.Time
	cfg         ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(courses exportCourseReader, enrollments exportEnrollmentReader, assignments exportAssignmentReader, fileStore fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		storage:     fileStore,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Generate builds dataset according to job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	scope := "all"
	if job.Params.CourseID != nil && *job.Params.CourseID != "" {
		scope = sanitizeFilename(*job.Params.CourseID)
	} else if job.Params.Period != "" {
		scope = sanitizeFilename(job.Params.Period)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeEnrollment:
		return s.buildEnrollmentDataset(ctx, job.Params)
	case models.ReportTypeCompletion:
		return s.buildCompletionDataset(ctx, job.Params)
	case models.ReportTypeMentorCost:
		return s.buildMentorCostDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildEnrollmentDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	filter := models.EnrollmentFilter{PageSize: 100}
	if params.CourseID != nil {
		filter.CourseID = *params.CourseID
	}
	rows := make([]map[string]string, 0)
	for page := 1; ; page++ {
		filter.Page = page
		details, total, err := s.enrollments.List(ctx, filter)
		if err != nil {
			return export.Dataset{}, "", err
		}
		for _, detail := range details {
			rows = append(rows, map[string]string{
				"Student":     detail.StudentName,
				"Course":      detail.CourseName,
				"Batch":       detail.BatchCode,
				"Approval":    detail.ApprovalStatus.String(),
				"Eligibility": detail.EligibilityStatus.String(),
				"Completion":  detail.CompletionStatus.String(),
				"Score":       formatOptionalFloat(detail.Score),
				"Enrolled At": detail.EnrolledAt.UTC().Format(time.RFC3339),
			})
		}
		if page*filter.PageSize >= total || len(details) == 0 {
			break
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Course", "Batch", "Approval", "Eligibility", "Completion", "Score", "Enrolled At"},
		Rows:    rows,
	}
	return dataset, "Enrollment Report", nil
}

func (s *ExportService) buildCompletionDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	courses, err := s.courses.ListAll(ctx, "")
	if err != nil {
		return export.Dataset{}, "", err
	}
	window := ResolvePeriod(params.Period, params.Month, params.Quarter, params.Year)

	rows := make([]map[string]string, 0, len(courses))
	for _, course := range courses {
		if window != nil && !CourseInRange(course, window) {
			continue
		}
		if params.CourseID != nil && *params.CourseID != "" && course.ID != *params.CourseID {
			continue
		}
		enrollments, err := s.enrollments.ListByCourse(ctx, course.ID)
		if err != nil {
			return export.Dataset{}, "", err
		}
		stats := AggregateCompletion(enrollments, course.Type)
		rows = append(rows, map[string]string{
			"Course":         course.Name,
			"Batch":          course.BatchCode,
			"Type":           string(course.Type),
			"Completed":      fmt.Sprintf("%d", stats.Completed),
			"Total":          fmt.Sprintf("%d", stats.Total),
			"Completion (%)": fmt.Sprintf("%.2f", stats.Rate),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Course", "Batch", "Type", "Completed", "Total", "Completion (%)"},
		Rows:    rows,
	}
	return dataset, "Completion Report", nil
}

func (s *ExportService) buildMentorCostDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	courseID := ""
	if params.CourseID != nil {
		courseID = *params.CourseID
	}
	assignments, err := s.assignments.ListAssignments(ctx, courseID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	window := ResolvePeriod(params.Period, params.Month, params.Quarter, params.Year)

	var total float64
	rows := make([]map[string]string, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.State != models.AssignmentStateApproved {
			continue
		}
		if window != nil {
			course, err := s.courses.FindByID(ctx, assignment.CourseID)
			if err != nil || !CourseInRange(*course, window) {
				continue
			}
		}
		total += assignment.SessionCost
		rows = append(rows, map[string]string{
			"Course":       assignment.CourseName,
			"Mentor":       assignment.MentorName,
			"Session Cost": fmt.Sprintf("%.2f", assignment.SessionCost),
			"Approved At":  formatReportTime(assignment.ApprovedAt),
		})
	}
	rows = append(rows, map[string]string{
		"Course":       "TOTAL",
		"Mentor":       "",
		"Session Cost": fmt.Sprintf("%.2f", total),
		"Approved At":  "",
	})
	dataset := export.Dataset{
		Headers: []string{"Course", "Mentor", "Session Cost", "Approved At"},
		Rows:    rows,
	}
	return dataset, "Mentor Cost Report", nil
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
