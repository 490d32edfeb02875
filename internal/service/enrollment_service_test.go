package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

type enrollRepoStub struct {
	enrollments  map[string]*models.Enrollment
	byCourse     []models.Enrollment
	exists       bool
	approvedYear int
	completed    map[string]bool
	created      *models.Enrollment
	approvals    map[string]string
	completions  []string
}

func newEnrollRepoStub() *enrollRepoStub {
	return &enrollRepoStub{
		enrollments: map[string]*models.Enrollment{},
		completed:   map[string]bool{},
		approvals:   map[string]string{},
	}
}

func (r *enrollRepoStub) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (r *enrollRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	return r.byCourse, nil
}

func (r *enrollRepoStub) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := r.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *enrollment
	return &clone, nil
}

func (r *enrollRepoStub) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	return r.exists, nil
}

func (r *enrollRepoStub) CountApprovedThisYear(ctx context.Context, studentID string, year int) (int, error) {
	return r.approvedYear, nil
}

func (r *enrollRepoStub) HasCompleted(ctx context.Context, studentID, courseName string) (bool, error) {
	return r.completed[courseName], nil
}

func (r *enrollRepoStub) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = "enr-new"
	r.created = enrollment
	return nil
}

func (r *enrollRepoStub) UpdateApproval(ctx context.Context, id string, status string) error {
	r.approvals[id] = status
	return nil
}

func (r *enrollRepoStub) UpdateCompletion(ctx context.Context, id string, completion string, score *float64, present, total *int) error {
	r.completions = append(r.completions, id)
	return nil
}

type enrollCourseStub struct {
	courses map[string]*models.Course
	deltas  map[string]int
}

func newEnrollCourseStub() *enrollCourseStub {
	return &enrollCourseStub{courses: map[string]*models.Course{}, deltas: map[string]int{}}
}

func (c *enrollCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *course
	return &clone, nil
}

func (c *enrollCourseStub) AdjustEnrolledCount(ctx context.Context, id string, delta int) error {
	c.deltas[id] += delta
	return nil
}

type enrollStudentStub struct {
	students map[string]*models.Student
}

func (s *enrollStudentStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *student
	return &clone, nil
}

type enrollFixture struct {
	svc      *EnrollmentService
	repo     *enrollRepoStub
	courses  *enrollCourseStub
	students *enrollStudentStub
}

func newEnrollFixture() enrollFixture {
	repo := newEnrollRepoStub()
	courses := newEnrollCourseStub()
	students := &enrollStudentStub{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", FullName: "Alia Rahman", Active: true},
	}}
	courses.courses["course-1"] = &models.Course{
		ID: "course-1", Name: "Go Fundamentals", Type: models.CourseTypeOnsite, SeatLimit: 2,
	}
	svc := NewEnrollmentService(repo, courses, students, nil, EnrollmentPolicy{AnnualLimit: 6}, nil, zap.NewNop())
	return enrollFixture{svc: svc, repo: repo, courses: courses, students: students}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	f := newEnrollFixture()
	enrollment, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)
	assert.True(t, enrollment.ApprovalStatus.Equals(models.ApprovalPending))
	assert.True(t, enrollment.EligibilityStatus.Equals(models.EligibilityEligible))
	assert.True(t, enrollment.CompletionStatus.Equals(models.CompletionNotStarted))
}

func TestEnrollmentServiceEnrollRecordsIneligibility(t *testing.T) {
	f := newEnrollFixture()
	f.repo.completed["Go Fundamentals"] = true

	enrollment, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)
	assert.True(t, enrollment.EligibilityStatus.Equals(models.EligibilityAlreadyTaken))
	require.NotNil(t, f.repo.created)
}

func TestEnrollmentServiceEnrollChecksPrerequisite(t *testing.T) {
	f := newEnrollFixture()
	prereq := "Go Fundamentals"
	f.courses.courses["course-2"] = &models.Course{
		ID: "course-2", Name: "Advanced Go", Type: models.CourseTypeOnsite, Prerequisite: &prereq,
	}

	enrollment, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-2",
	})
	require.NoError(t, err)
	assert.True(t, enrollment.EligibilityStatus.Equals(models.EligibilityMissingPrerequisite))

	f.repo.completed["Go Fundamentals"] = true
	f.repo.exists = false
	enrollment, err = f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-2",
	})
	require.NoError(t, err)
	assert.True(t, enrollment.EligibilityStatus.Equals(models.EligibilityEligible))
}

func TestEnrollmentServiceEnrollAnnualLimit(t *testing.T) {
	f := newEnrollFixture()
	f.repo.approvedYear = 6

	enrollment, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)
	assert.True(t, enrollment.EligibilityStatus.Equals(models.EligibilityAnnualLimit))
}

func TestEnrollmentServiceEnrollRejectsDuplicate(t *testing.T) {
	f := newEnrollFixture()
	f.repo.exists = true
	_, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.Error(t, err)
}

func TestEnrollmentServiceEnrollRejectsInactiveStudent(t *testing.T) {
	f := newEnrollFixture()
	f.students.students["stu-2"] = &models.Student{ID: "stu-2", Active: false}
	_, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-2",
		CourseID:  "course-1",
	})
	require.Error(t, err)
}

func TestEnrollmentServiceEnrollRejectsSyncedCourse(t *testing.T) {
	f := newEnrollFixture()
	f.courses.courses["lms-1"] = &models.Course{ID: "lms-1", Name: "Platform Course", IsLMSCourse: true}
	_, err := f.svc.Enroll(context.Background(), dto.CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "lms-1",
	})
	require.Error(t, err)
}

func TestEnrollmentServiceApproveTakesSeat(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:                "enr-1",
		StudentID:         "stu-1",
		CourseID:          "course-1",
		ApprovalStatus:    models.StatusValue(models.ApprovalPending),
		EligibilityStatus: models.StatusValue(models.EligibilityEligible),
	}

	enrollment, err := f.svc.Approve(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.True(t, enrollment.ApprovalStatus.Equals(models.ApprovalApproved))
	assert.Equal(t, 1, f.courses.deltas["course-1"])
}

func TestEnrollmentServiceApproveRejectsFullCourse(t *testing.T) {
	f := newEnrollFixture()
	f.courses.courses["course-1"].CurrentEnrolled = 2
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:                "enr-1",
		CourseID:          "course-1",
		ApprovalStatus:    models.StatusValue(models.ApprovalPending),
		EligibilityStatus: models.StatusValue(models.EligibilityEligible),
	}

	_, err := f.svc.Approve(context.Background(), "enr-1")
	require.Error(t, err)
	assert.Equal(t, 0, f.courses.deltas["course-1"])
}

func TestEnrollmentServiceApproveRejectsIneligible(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:                "enr-1",
		CourseID:          "course-1",
		ApprovalStatus:    models.StatusValue(models.ApprovalPending),
		EligibilityStatus: models.StatusValue(models.EligibilityAnnualLimit),
	}

	_, err := f.svc.Approve(context.Background(), "enr-1")
	require.Error(t, err)
}

func TestEnrollmentServiceWithdrawReleasesSeat(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalApproved),
	}

	enrollment, err := f.svc.Withdraw(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.True(t, enrollment.ApprovalStatus.Equals(models.ApprovalWithdrawn))
	assert.Equal(t, -1, f.courses.deltas["course-1"])
}

func TestEnrollmentServiceWithdrawPendingKeepsSeatCount(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalPending),
	}

	_, err := f.svc.Withdraw(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.courses.deltas["course-1"])
}

func TestEnrollmentServiceWithdrawRejectsTerminalStates(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalWithdrawn),
	}
	f.repo.enrollments["enr-2"] = &models.Enrollment{
		ID:             "enr-2",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalRejected),
	}

	_, err := f.svc.Withdraw(context.Background(), "enr-1")
	require.Error(t, err)
	_, err = f.svc.Withdraw(context.Background(), "enr-2")
	require.Error(t, err)
}

func TestEnrollmentServiceRecordCompletion(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalApproved),
	}
	score := 92.5
	present := 8
	total := 10

	enrollment, err := f.svc.RecordCompletion(context.Background(), "enr-1", dto.RecordCompletionRequest{
		CompletionStatus: models.CompletionCompleted,
		Score:            &score,
		PresentCount:     &present,
		TotalSessions:    &total,
	})
	require.NoError(t, err)
	assert.True(t, enrollment.CompletionStatus.Equals(models.CompletionCompleted))
	require.Len(t, f.repo.completions, 1)
}

func TestEnrollmentServiceRecordCompletionValidation(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalApproved),
	}

	badScore := 120.0
	_, err := f.svc.RecordCompletion(context.Background(), "enr-1", dto.RecordCompletionRequest{
		CompletionStatus: models.CompletionCompleted,
		Score:            &badScore,
	})
	require.Error(t, err)

	present := 12
	total := 10
	_, err = f.svc.RecordCompletion(context.Background(), "enr-1", dto.RecordCompletionRequest{
		CompletionStatus: models.CompletionCompleted,
		PresentCount:     &present,
		TotalSessions:    &total,
	})
	require.Error(t, err)

	_, err = f.svc.RecordCompletion(context.Background(), "enr-1", dto.RecordCompletionRequest{
		CompletionStatus: "Graduated",
	})
	require.Error(t, err)
}

func TestEnrollmentServiceRecordCompletionRequiresApproval(t *testing.T) {
	f := newEnrollFixture()
	f.repo.enrollments["enr-1"] = &models.Enrollment{
		ID:             "enr-1",
		CourseID:       "course-1",
		ApprovalStatus: models.StatusValue(models.ApprovalPending),
	}
	_, err := f.svc.RecordCompletion(context.Background(), "enr-1", dto.RecordCompletionRequest{
		CompletionStatus: models.CompletionCompleted,
	})
	require.Error(t, err)
}

func TestEnrollmentServiceCourseBuckets(t *testing.T) {
	f := newEnrollFixture()
	f.repo.byCourse = []models.Enrollment{
		{ID: "e1", ApprovalStatus: models.StatusValue(models.ApprovalApproved), CompletionStatus: models.StatusValue(models.CompletionCompleted)},
		{ID: "e2", ApprovalStatus: models.StatusValue(models.ApprovalPending), EligibilityStatus: models.StatusValue(models.EligibilityEligible)},
		{ID: "e3", ApprovalStatus: models.StatusValue(models.ApprovalWithdrawn)},
	}

	onsite, online, err := f.svc.CourseBuckets(context.Background(), "course-1")
	require.NoError(t, err)
	require.Nil(t, online)
	require.NotNil(t, onsite)
	assert.Len(t, onsite.Approved, 1)
	assert.Len(t, onsite.EligiblePending, 1)
	assert.Len(t, onsite.Withdrawn, 1)
}

func TestEnrollmentServiceCourseBucketsOnline(t *testing.T) {
	f := newEnrollFixture()
	f.courses.courses["lms-1"] = &models.Course{ID: "lms-1", Type: models.CourseTypeOnline, IsLMSCourse: true}
	half := 50.0
	f.repo.byCourse = []models.Enrollment{
		{ID: "e1", IsLMSEnrollment: true, CompletionStatus: models.StatusValue(models.CompletionCompleted)},
		{ID: "e2", IsLMSEnrollment: true, Progress: &half, CompletionStatus: models.StatusValue(models.CompletionInProgress)},
	}

	onsite, online, err := f.svc.CourseBuckets(context.Background(), "lms-1")
	require.NoError(t, err)
	require.Nil(t, onsite)
	require.NotNil(t, online)
	assert.Len(t, online.Completed, 1)
	assert.Len(t, online.InProgress, 1)
}
