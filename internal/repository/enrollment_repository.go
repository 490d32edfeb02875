package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

const enrollmentColumns = `e.id, e.student_id, e.course_id, e.approval_status, e.eligibility_status,
e.completion_status, e.score, e.attendance_percentage, e.present_count, e.total_sessions,
e.is_lms_enrollment, e.progress, e.enrolled_at, e.updated_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with student/course context, filtered by the
// provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN students s ON s.id = e.student_id
LEFT JOIN courses c ON c.id = e.course_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.ApprovalStatus != "" {
		conditions = append(conditions, fmt.Sprintf("e.approval_status = $%d", len(args)+1))
		args = append(args, filter.ApprovalStatus)
	}
	if filter.Completion != "" {
		conditions = append(conditions, fmt.Sprintf("e.completion_status = $%d", len(args)+1))
		args = append(args, filter.Completion)
	}
	if filter.LMSOnly != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_lms_enrollment = $%d", len(args)+1))
		args = append(args, *filter.LMSOnly)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "s.full_name",
		"course_name":  "c.name",
		"progress":     "e.progress",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, s.full_name AS student_name, c.name AS course_name, c.batch_code AS batch_code
%s ORDER BY %s %s LIMIT %d OFFSET %d`, enrollmentColumns, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByCourse returns every enrollment for a course, for classification.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e WHERE e.course_id = $1", enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListAll returns every enrollment row; the dashboard aggregates in memory
// because completion math depends on derived course state.
func (r *EnrollmentRepository) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e", enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list all enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns every enrollment for a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e WHERE e.student_id = $1", enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e WHERE e.id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether the student already holds a non-rejected
// enrollment on the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND approval_status <> $3 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, courseID, models.ApprovalRejected); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return true, nil
}

// CountApprovedThisYear counts approved or pending enrollments the student
// accumulated in the given year, for the annual-limit rule.
func (r *EnrollmentRepository) CountApprovedThisYear(ctx context.Context, studentID string, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments
WHERE student_id = $1 AND approval_status IN ($2, $3) AND EXTRACT(YEAR FROM enrolled_at) = $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, models.ApprovalApproved, models.ApprovalPending, year); err != nil {
		return 0, fmt.Errorf("count yearly enrollments: %w", err)
	}
	return count, nil
}

// HasCompleted reports whether the student already completed the course in
// any earlier batch, for the already-taken rule.
func (r *EnrollmentRepository) HasCompleted(ctx context.Context, studentID, courseName string) (bool, error) {
	const query = `SELECT 1 FROM enrollments e
JOIN courses c ON c.id = e.course_id
WHERE e.student_id = $1 AND c.name = $2 AND e.completion_status = $3 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, courseName, models.CompletionCompleted); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check completed course: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, approval_status, eligibility_status,
completion_status, score, attendance_percentage, present_count, total_sessions, is_lms_enrollment,
progress, enrolled_at, updated_at)
VALUES (:id, :student_id, :course_id, :approval_status, :eligibility_status, :completion_status,
:score, :attendance_percentage, :present_count, :total_sessions, :is_lms_enrollment, :progress,
:enrolled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateApproval transitions the approval status.
func (r *EnrollmentRepository) UpdateApproval(ctx context.Context, id string, status string) error {
	const query = `UPDATE enrollments SET approval_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update approval status: %w", err)
	}
	return nil
}

// UpdateCompletion records completion state together with score and
// attendance counters.
func (r *EnrollmentRepository) UpdateCompletion(ctx context.Context, id string, completion string, score *float64, present, total *int) error {
	const query = `UPDATE enrollments SET completion_status = $2, score = $3, present_count = $4,
total_sessions = $5, attendance_percentage = CASE WHEN $5 > 0 THEN ($4::float / $5::float) * 100 ELSE attendance_percentage END,
updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, completion, score, present, total, time.Now().UTC()); err != nil {
		return fmt.Errorf("update completion: %w", err)
	}
	return nil
}

// UpsertLMSEnrollment inserts or refreshes an enrollment synced from the
// LMS, keyed by the (student, course) pair.
func (r *EnrollmentRepository) UpsertLMSEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, approval_status, eligibility_status,
completion_status, score, attendance_percentage, present_count, total_sessions, is_lms_enrollment,
progress, enrolled_at, updated_at)
VALUES (:id, :student_id, :course_id, :approval_status, :eligibility_status, :completion_status,
:score, :attendance_percentage, :present_count, :total_sessions, :is_lms_enrollment, :progress,
:enrolled_at, :updated_at)
ON CONFLICT (student_id, course_id) DO UPDATE SET completion_status = EXCLUDED.completion_status,
progress = EXCLUDED.progress, score = EXCLUDED.score, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("upsert lms enrollment: %w", err)
	}
	return nil
}
