package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

type lmsClientStub struct {
	courses     []dto.LMSCourse
	enrollments []dto.LMSEnrollment
}

func (c *lmsClientStub) FetchCourses(ctx context.Context, page int) (*dto.LMSCoursePage, error) {
	if page > 1 {
		return &dto.LMSCoursePage{Page: page}, nil
	}
	return &dto.LMSCoursePage{Courses: c.courses, Page: page}, nil
}

func (c *lmsClientStub) FetchEnrollments(ctx context.Context, page int) (*dto.LMSEnrollmentPage, error) {
	if page > 1 {
		return &dto.LMSEnrollmentPage{Page: page}, nil
	}
	return &dto.LMSEnrollmentPage{Enrollments: c.enrollments, Page: page}, nil
}

type lmsCourseStoreStub struct {
	byLMSID  map[string]*models.Course
	upserted []models.Course
}

func (r *lmsCourseStoreStub) FindByLMSID(ctx context.Context, lmsID string) (*models.Course, error) {
	course, ok := r.byLMSID[lmsID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *course
	return &clone, nil
}

func (r *lmsCourseStoreStub) UpsertLMSCourse(ctx context.Context, course *models.Course) error {
	course.ID = "local-" + *course.LMSCourseID
	r.byLMSID[*course.LMSCourseID] = course
	r.upserted = append(r.upserted, *course)
	return nil
}

type lmsEnrollmentStoreStub struct {
	upserted []models.Enrollment
}

func (r *lmsEnrollmentStoreStub) UpsertLMSEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	r.upserted = append(r.upserted, *enrollment)
	return nil
}

type lmsStudentStoreStub struct {
	byEmail map[string]*models.Student
}

func (r *lmsStudentStoreStub) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *student
	return &clone, nil
}

func newLMSSyncFixture(client *lmsClientStub) (*LMSSyncService, *lmsCourseStoreStub, *lmsEnrollmentStoreStub) {
	courses := &lmsCourseStoreStub{byLMSID: map[string]*models.Course{}}
	enrollments := &lmsEnrollmentStoreStub{}
	students := &lmsStudentStoreStub{byEmail: map[string]*models.Student{
		"alia@example.com": {ID: "stu-1", Email: "alia@example.com", Active: true},
	}}
	svc := NewLMSSyncService(client, courses, enrollments, students, nil, zap.NewNop())
	return svc, courses, enrollments
}

func TestLMSSyncRun(t *testing.T) {
	progress := 100.0
	client := &lmsClientStub{
		courses: []dto.LMSCourse{
			{ID: "lms-1", Title: "Security Awareness", Code: "SEC-01", Status: models.StatusValue("Ongoing")},
		},
		enrollments: []dto.LMSEnrollment{
			{CourseID: "lms-1", UserEmail: "alia@example.com", Progress: &progress},
		},
	}
	svc, courses, enrollments := newLMSSyncFixture(client)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.CoursesUpserted)
	assert.Equal(t, 1, result.EnrollmentsUpserted)
	assert.Empty(t, result.Errors)

	require.Len(t, courses.upserted, 1)
	synced := courses.upserted[0]
	assert.True(t, synced.IsLMSCourse)
	assert.Equal(t, models.CourseTypeOnline, synced.Type)
	assert.Equal(t, "ongoing", synced.Status)

	require.Len(t, enrollments.upserted, 1)
	record := enrollments.upserted[0]
	assert.True(t, record.IsLMSEnrollment)
	assert.Equal(t, "stu-1", record.StudentID)
	assert.True(t, record.ApprovalStatus.Equals(models.ApprovalApproved))
	assert.True(t, record.CompletionStatus.Equals(models.CompletionCompleted))
}

func TestLMSSyncSkipsUnknownUsers(t *testing.T) {
	client := &lmsClientStub{
		courses: []dto.LMSCourse{
			{ID: "lms-1", Title: "Security Awareness", Code: "SEC-01"},
		},
		enrollments: []dto.LMSEnrollment{
			{CourseID: "lms-1", UserEmail: "contractor@vendor.example"},
		},
	}
	svc, _, enrollments := newLMSSyncFixture(client)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedUnknownUsers)
	assert.Equal(t, 0, result.EnrollmentsUpserted)
	assert.Empty(t, enrollments.upserted)
}

func TestLMSSyncRecordsEnrollmentErrorForUnsyncedCourse(t *testing.T) {
	client := &lmsClientStub{
		enrollments: []dto.LMSEnrollment{
			{CourseID: "lms-missing", UserEmail: "alia@example.com"},
		},
	}
	svc, _, _ := newLMSSyncFixture(client)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "lms-missing")
}

func TestLMSSyncSingleFlight(t *testing.T) {
	svc, _, _ := newLMSSyncFixture(&lmsClientStub{})
	svc.mu.Lock()
	svc.running = true
	svc.mu.Unlock()

	_, err := svc.Run(context.Background())
	require.Error(t, err)
}

func TestLMSSyncCompletionFallsBackToProgress(t *testing.T) {
	half := 40.0
	client := &lmsClientStub{
		courses: []dto.LMSCourse{{ID: "lms-1", Title: "Security Awareness", Code: "SEC-01"}},
		enrollments: []dto.LMSEnrollment{
			{CourseID: "lms-1", UserEmail: "alia@example.com", Progress: &half},
		},
	}
	svc, _, enrollments := newLMSSyncFixture(client)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, enrollments.upserted, 1)
	assert.True(t, enrollments.upserted[0].CompletionStatus.Equals(models.CompletionInProgress))
}

func TestLMSSyncLastResult(t *testing.T) {
	svc, _, _ := newLMSSyncFixture(&lmsClientStub{})
	assert.Nil(t, svc.LastResult())

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, svc.LastResult())
}
