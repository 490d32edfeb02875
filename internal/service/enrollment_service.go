package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	CountApprovedThisYear(ctx context.Context, studentID string, year int) (int, error)
	HasCompleted(ctx context.Context, studentID, courseName string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateApproval(ctx context.Context, id string, status string) error
	UpdateCompletion(ctx context.Context, id string, completion string, score *float64, present, total *int) error
}

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	AdjustEnrolledCount(ctx context.Context, id string, delta int) error
}

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// EnrollmentPolicy carries the business limits applied at enrollment time.
type EnrollmentPolicy struct {
	AnnualLimit int
}

// EnrollmentService handles the enrollment lifecycle for onsite courses.
// LMS enrollments are written by the sync pipeline and are read-only here.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   enrollmentCourseRepository
	students  enrollmentStudentRepository
	cache     *CacheService
	policy    EnrollmentPolicy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, courses enrollmentCourseRepository, students enrollmentStudentRepository, cache *CacheService, policy EnrollmentPolicy, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.AnnualLimit <= 0 {
		policy.AnnualLimit = 6
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		students:  students,
		cache:     cache,
		policy:    policy,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns enrollments with joined context plus pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// Enroll registers a student onto a course. Eligibility is evaluated and
// recorded on the row even when the student fails a rule, so coordinators
// see why an enrollment cannot be approved.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is inactive")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.IsLMSCourse {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment for synced courses happens on the learning platform")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}

	eligibility, err := s.evaluateEligibility(ctx, student, course)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:         req.StudentID,
		CourseID:          req.CourseID,
		ApprovalStatus:    models.StatusValue(models.ApprovalPending),
		EligibilityStatus: models.StatusValue(eligibility),
		CompletionStatus:  models.StatusValue(models.CompletionNotStarted),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidate(ctx)
	return enrollment, nil
}

// Approve moves a pending enrollment to approved and takes a seat.
func (s *EnrollmentService) Approve(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if !enrollment.EligibilityStatus.Equals(models.EligibilityEligible) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment is not eligible for approval")
	}

	course, err := s.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.SeatLimit > 0 && course.CurrentEnrolled >= course.SeatLimit {
		return nil, appErrors.Clone(appErrors.ErrSeatLimitReached, "")
	}

	if err := s.repo.UpdateApproval(ctx, id, models.ApprovalApproved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve enrollment")
	}
	if err := s.courses.AdjustEnrolledCount(ctx, enrollment.CourseID, 1); err != nil {
		s.logger.Warn("failed to adjust enrolled count", zap.String("course_id", enrollment.CourseID), zap.Error(err))
	}
	enrollment.ApprovalStatus = models.StatusValue(models.ApprovalApproved)
	s.invalidate(ctx)
	return enrollment, nil
}

// Reject declines a pending enrollment.
func (s *EnrollmentService) Reject(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateApproval(ctx, id, models.ApprovalRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject enrollment")
	}
	enrollment.ApprovalStatus = models.StatusValue(models.ApprovalRejected)
	s.invalidate(ctx)
	return enrollment, nil
}

// Withdraw releases the seat of an approved or pending enrollment. The row
// stays on record because withdrawn enrollments still count against
// completion denominators.
func (s *EnrollmentService) Withdraw(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case enrollment.ApprovalStatus.Equals(models.ApprovalWithdrawn):
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is already withdrawn")
	case enrollment.ApprovalStatus.Equals(models.ApprovalRejected):
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "rejected enrollments cannot be withdrawn")
	}

	wasApproved := enrollment.ApprovalStatus.Equals(models.ApprovalApproved)
	if err := s.repo.UpdateApproval(ctx, id, models.ApprovalWithdrawn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw enrollment")
	}
	if wasApproved {
		if err := s.courses.AdjustEnrolledCount(ctx, enrollment.CourseID, -1); err != nil {
			s.logger.Warn("failed to release seat", zap.String("course_id", enrollment.CourseID), zap.Error(err))
		}
	}
	enrollment.ApprovalStatus = models.StatusValue(models.ApprovalWithdrawn)
	s.invalidate(ctx)
	return enrollment, nil
}

// RecordCompletion stores the outcome of a finished onsite run.
func (s *EnrollmentService) RecordCompletion(ctx context.Context, id string, req dto.RecordCompletionRequest) (*models.Enrollment, error) {
	switch req.CompletionStatus {
	case models.CompletionCompleted, models.CompletionFailed, models.CompletionInProgress, models.CompletionNotStarted:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown completion status")
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and 100")
	}
	if req.PresentCount != nil && req.TotalSessions != nil && *req.PresentCount > *req.TotalSessions {
		return nil, appErrors.Clone(appErrors.ErrValidation, "present count exceeds total sessions")
	}

	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.IsLMSEnrollment {
		return nil, appErrors.Clone(appErrors.ErrConflict, "completion for synced enrollments comes from the learning platform")
	}
	if !enrollment.ApprovalStatus.Equals(models.ApprovalApproved) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only approved enrollments can record completion")
	}

	if err := s.repo.UpdateCompletion(ctx, id, req.CompletionStatus, req.Score, req.PresentCount, req.TotalSessions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record completion")
	}
	enrollment.CompletionStatus = models.StatusValue(req.CompletionStatus)
	enrollment.Score = req.Score
	enrollment.PresentCount = req.PresentCount
	enrollment.TotalSessions = req.TotalSessions
	s.invalidate(ctx)
	return enrollment, nil
}

// CourseBuckets partitions a course's enrollments for the admin course view.
// Onsite courses get the five approval buckets plus the unclassified
// remainder; online courses get the progress split.
func (s *EnrollmentService) CourseBuckets(ctx context.Context, courseID string) (*OnsiteBuckets, *OnlineBuckets, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	if course.Type == models.CourseTypeOnline || course.IsLMSCourse {
		online := ClassifyOnline(enrollments)
		return nil, &online, nil
	}
	onsite := ClassifyOnsite(enrollments)
	if len(onsite.Unclassified) > 0 {
		s.logger.Warn("enrollments fell outside every bucket",
			zap.String("course_id", courseID),
			zap.Int("count", len(onsite.Unclassified)))
	}
	return &onsite, nil, nil
}

// Completion aggregates completion stats for one course.
func (s *EnrollmentService) Completion(ctx context.Context, courseID string) (*CompletionStats, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	stats := AggregateCompletion(enrollments, course.Type)
	return &stats, nil
}

func (s *EnrollmentService) evaluateEligibility(ctx context.Context, student *models.Student, course *models.Course) (string, error) {
	if course.Prerequisite != nil && *course.Prerequisite != "" {
		done, err := s.repo.HasCompleted(ctx, student.ID, *course.Prerequisite)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite")
		}
		if !done {
			return models.EligibilityMissingPrerequisite, nil
		}
	}

	taken, err := s.repo.HasCompleted(ctx, student.ID, course.Name)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check completion history")
	}
	if taken {
		return models.EligibilityAlreadyTaken, nil
	}

	count, err := s.repo.CountApprovedThisYear(ctx, student.ID, s.now().Year())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved enrollments")
	}
	if count >= s.policy.AnnualLimit {
		return models.EligibilityAnnualLimit, nil
	}
	return models.EligibilityEligible, nil
}

func (s *EnrollmentService) load(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) loadPending(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !enrollment.ApprovalStatus.Equals(models.ApprovalPending) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment is not pending")
	}
	return enrollment, nil
}

func (s *EnrollmentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
