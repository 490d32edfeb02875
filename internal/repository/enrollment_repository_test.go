package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

func enrollmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "approval_status", "eligibility_status", "completion_status",
		"score", "attendance_percentage", "present_count", "total_sessions", "is_lms_enrollment",
		"progress", "enrolled_at", "updated_at",
	})
}

func TestEnrollmentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM enrollments e WHERE e.course_id = \\$1").
		WithArgs("course-1").
		WillReturnRows(enrollmentRows().
			AddRow("enr-1", "stu-1", "course-1", models.ApprovalApproved, models.EligibilityEligible,
				models.CompletionInProgress, nil, nil, nil, nil, false, nil, now, now).
			AddRow("enr-2", "stu-2", "course-1", models.ApprovalPending, models.EligibilityAnnualLimit,
				models.CompletionNotStarted, nil, nil, nil, nil, false, nil, now, now))

	enrollments, err := repo.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.True(t, enrollments[0].ApprovalStatus.Equals(models.ApprovalApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollments WHERE student_id = \\$1 AND course_id = \\$2 AND approval_status <> \\$3").
		WithArgs("stu-1", "course-1", models.ApprovalRejected).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollments WHERE student_id = \\$1 AND course_id = \\$2").
		WithArgs("stu-9", "course-1", models.ApprovalRejected).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.Exists(context.Background(), "stu-9", "course-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateApproval(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE enrollments SET approval_status = \\$2, updated_at = \\$3 WHERE id = \\$1").
		WithArgs("enr-1", models.ApprovalApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateApproval(context.Background(), "enr-1", models.ApprovalApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}
