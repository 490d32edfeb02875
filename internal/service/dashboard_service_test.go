package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

type dashCourseStub struct {
	courses []models.Course
}

func (s *dashCourseStub) ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error) {
	return s.courses, nil
}

type dashEnrollmentStub struct {
	enrollments []models.Enrollment
}

func (s *dashEnrollmentStub) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	return s.enrollments, nil
}

type dashAssignmentStub struct {
	assignments []models.MentorAssignmentDetail
}

func (s *dashAssignmentStub) ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error) {
	return s.assignments, nil
}

type dashStudentStub struct {
	headcounts []models.DepartmentHeadcount
}

func (s *dashStudentStub) DepartmentHeadcounts(ctx context.Context) ([]models.DepartmentHeadcount, error) {
	return s.headcounts, nil
}

func newDashboardFixture(now time.Time) *DashboardService {
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	courses := &dashCourseStub{courses: []models.Course{
		{ID: "c1", Name: "Go Fundamentals", BatchCode: "GO-01", Type: models.CourseTypeOnsite, StartDate: &past, EndDate: &future, CurrentEnrolled: 12},
		{ID: "c2", Name: "Security Awareness", BatchCode: "SEC-01", Type: models.CourseTypeOnline, IsLMSCourse: true, StartDate: &past, CurrentEnrolled: 30},
		{ID: "c3", Name: "Docker Basics", BatchCode: "DK-01", Type: models.CourseTypeOnsite, StartDate: &future, CurrentEnrolled: 4},
	}}
	enrollments := &dashEnrollmentStub{enrollments: []models.Enrollment{
		{ID: "e1", CourseID: "c1", ApprovalStatus: models.StatusValue(models.ApprovalApproved), CompletionStatus: models.StatusValue(models.CompletionCompleted)},
		{ID: "e2", CourseID: "c1", ApprovalStatus: models.StatusValue(models.ApprovalApproved), CompletionStatus: models.StatusValue(models.CompletionFailed)},
		{ID: "e3", CourseID: "c1", ApprovalStatus: models.StatusValue(models.ApprovalRejected)},
		{ID: "e4", CourseID: "c2", IsLMSEnrollment: true, CompletionStatus: models.StatusValue(models.CompletionCompleted)},
		{ID: "e5", CourseID: "c2", IsLMSEnrollment: true, CompletionStatus: models.StatusValue(models.CompletionNotStarted)},
	}}
	approvedAt := now.AddDate(0, 0, -10)
	assignments := &dashAssignmentStub{assignments: []models.MentorAssignmentDetail{
		{MentorAssignment: models.MentorAssignment{ID: "a1", CourseID: "c1", SessionCost: 1500, State: models.AssignmentStateApproved, ApprovedAt: &approvedAt}},
		{MentorAssignment: models.MentorAssignment{ID: "a2", CourseID: "c1", SessionCost: 9000, State: models.AssignmentStateDraft}},
	}}
	students := &dashStudentStub{headcounts: []models.DepartmentHeadcount{
		{Department: "Engineering", Students: 40},
		{Department: "Finance", Students: 12},
	}}

	svc := NewDashboardService(DashboardServiceParams{
		Courses:     courses,
		Enrollments: enrollments,
		Assignments: assignments,
		Students:    students,
		Logger:      zap.NewNop(),
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboardSummary(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	summary, hit, err := svc.Summary(context.Background(), "", "", "", 0)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 1, summary.Courses.Upcoming)
	assert.Equal(t, 2, summary.Courses.Ongoing)
	assert.Equal(t, 0, summary.Courses.Completed)

	// Onsite: 1 completed of 2 counted (rejected excluded from denominator).
	assert.Equal(t, 1, summary.Completion.Onsite.Completed)
	assert.Equal(t, 2, summary.Completion.Onsite.Total)
	assert.InDelta(t, 50.0, summary.Completion.Onsite.Rate, 0.001)

	// Online: every synced record counts.
	assert.Equal(t, 1, summary.Completion.Online.Completed)
	assert.Equal(t, 2, summary.Completion.Online.Total)

	assert.InDelta(t, 1500, summary.Mentors.TotalCost, 0.001)
	assert.Equal(t, 1, summary.Mentors.AssignedCount)

	require.NotEmpty(t, summary.Top.CoursesByEnrollment)
	assert.Equal(t, "c2", summary.Top.CoursesByEnrollment[0].CourseID)
	require.Len(t, summary.Top.Departments, 2)
	assert.Equal(t, "Engineering", summary.Top.Departments[0].Department)
}

func TestDashboardSummaryWindowed(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	// Q4 2023 excludes every fixture course.
	summary, _, err := svc.Summary(context.Background(), PeriodQuarter, "", "4", 2023)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Courses.Upcoming+summary.Courses.Ongoing+summary.Courses.Completed)
	assert.Equal(t, 0, summary.Completion.Onsite.Total)
	assert.Equal(t, 0, summary.Mentors.AssignedCount)
	require.NotNil(t, summary.Period.Start)
	assert.Equal(t, "2023-10-01", *summary.Period.Start)
}

func TestDashboardSummaryPeriodDescriptor(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	summary, _, err := svc.Summary(context.Background(), "", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, PeriodAllTime, summary.Period.Period)
	assert.Nil(t, summary.Period.Start)
}
