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

const courseColumns = `id, name, batch_code, course_type, status, description, start_date, end_date,
prerequisite, seat_limit, current_enrolled, is_lms_course, lms_course_id, created_at, updated_at`

// CourseRepository handles persistence of training courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses filtered by the provided criteria. Lifecycle and
// period filtering happen in the service layer because they depend on the
// derived status, not on stored columns.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("course_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(batch_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":       "name",
		"batch_code": "batch_code",
		"start_date": "start_date",
		"created_at": "created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "start_date"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s NULLS LAST LIMIT %d OFFSET %d",
		courseColumns, base+clause, orderBy, order, size, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListAll returns every course; used when derived-status filtering makes
// SQL-side pagination impossible.
func (r *CourseRepository) ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses", courseColumns)
	var args []interface{}
	if courseType != "" {
		query += " WHERE course_type = $1"
		args = append(args, courseType)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByLMSID looks up a synced course by its external LMS identifier.
func (r *CourseRepository) FindByLMSID(ctx context.Context, lmsID string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE lms_course_id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, lmsID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course row.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, name, batch_code, course_type, status, description, start_date, end_date,
prerequisite, seat_limit, current_enrolled, is_lms_course, lms_course_id, created_at, updated_at)
VALUES (:id, :name, :batch_code, :course_type, :status, :description, :start_date, :end_date,
:prerequisite, :seat_limit, :current_enrolled, :is_lms_course, :lms_course_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites the mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, batch_code = :batch_code, course_type = :course_type,
status = :status, description = :description, start_date = :start_date, end_date = :end_date,
prerequisite = :prerequisite, seat_limit = :seat_limit, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// UpsertLMSCourse inserts or refreshes a course synced from the LMS, keyed
// by its external identifier.
func (r *CourseRepository) UpsertLMSCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, name, batch_code, course_type, status, description, start_date, end_date,
prerequisite, seat_limit, current_enrolled, is_lms_course, lms_course_id, created_at, updated_at)
VALUES (:id, :name, :batch_code, :course_type, :status, :description, :start_date, :end_date,
:prerequisite, :seat_limit, :current_enrolled, :is_lms_course, :lms_course_id, :created_at, :updated_at)
ON CONFLICT (lms_course_id) DO UPDATE SET name = EXCLUDED.name, start_date = EXCLUDED.start_date,
end_date = EXCLUDED.end_date, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("upsert lms course: %w", err)
	}
	return nil
}

// AdjustEnrolledCount shifts current_enrolled by delta, clamped at zero.
func (r *CourseRepository) AdjustEnrolledCount(ctx context.Context, id string, delta int) error {
	const query = `UPDATE courses SET current_enrolled = GREATEST(current_enrolled + $2, 0), updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("adjust enrolled count: %w", err)
	}
	return nil
}

// Delete removes a course row; enrollments cascade at the schema level.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
