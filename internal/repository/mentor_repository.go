package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

const mentorColumns = `id, full_name, email, expertise, external, active, created_at, updated_at`

const assignmentColumns = `a.id, a.course_id, a.mentor_id, a.session_cost, a.state, a.approved_by,
a.approved_at, a.created_at, a.updated_at`

// MentorRepository handles mentors and their course assignments.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs the repository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// ListMentors returns active mentors.
func (r *MentorRepository) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	query := fmt.Sprintf("SELECT %s FROM mentors WHERE active ORDER BY full_name ASC", mentorColumns)
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query); err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	return mentors, nil
}

// FindMentorByID returns a mentor row.
func (r *MentorRepository) FindMentorByID(ctx context.Context, id string) (*models.Mentor, error) {
	query := fmt.Sprintf("SELECT %s FROM mentors WHERE id = $1", mentorColumns)
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// CreateMentor persists a new mentor row.
func (r *MentorRepository) CreateMentor(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	const query = `INSERT INTO mentors (id, full_name, email, expertise, external, active, created_at, updated_at)
VALUES (:id, :full_name, :email, :expertise, :external, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// ListAssignments returns assignment rows with mentor/course context for a
// course, newest first.
func (r *MentorRepository) ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, m.full_name AS mentor_name, c.name AS course_name
FROM mentor_assignments a
LEFT JOIN mentors m ON m.id = a.mentor_id
LEFT JOIN courses c ON c.id = a.course_id
WHERE a.course_id = $1 ORDER BY a.created_at DESC`, assignmentColumns)
	var assignments []models.MentorAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindAssignmentByID returns one assignment row.
func (r *MentorRepository) FindAssignmentByID(ctx context.Context, id string) (*models.MentorAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM mentor_assignments a WHERE a.id = $1", assignmentColumns)
	var assignment models.MentorAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByCourseAndState returns the single assignment in the given state
// for a course, if any.
func (r *MentorRepository) FindByCourseAndState(ctx context.Context, courseID string, state models.AssignmentState) (*models.MentorAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM mentor_assignments a WHERE a.course_id = $1 AND a.state = $2 ORDER BY a.created_at DESC LIMIT 1", assignmentColumns)
	var assignment models.MentorAssignment
	if err := r.db.GetContext(ctx, &assignment, query, courseID, state); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CreateAssignment persists a new assignment row.
func (r *MentorRepository) CreateAssignment(ctx context.Context, assignment *models.MentorAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	const query = `INSERT INTO mentor_assignments (id, course_id, mentor_id, session_cost, state, approved_by, approved_at, created_at, updated_at)
VALUES (:id, :course_id, :mentor_id, :session_cost, :state, :approved_by, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// UpdateAssignment overwrites the mutable assignment fields.
func (r *MentorRepository) UpdateAssignment(ctx context.Context, assignment *models.MentorAssignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mentor_assignments SET mentor_id = :mentor_id, session_cost = :session_cost,
state = :state, approved_by = :approved_by, approved_at = :approved_at, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
