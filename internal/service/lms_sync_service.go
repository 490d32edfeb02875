package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
)

type lmsCourseRepository interface {
	FindByLMSID(ctx context.Context, lmsID string) (*models.Course, error)
	UpsertLMSCourse(ctx context.Context, course *models.Course) error
}

type lmsEnrollmentRepository interface {
	UpsertLMSEnrollment(ctx context.Context, enrollment *models.Enrollment) error
}

type lmsStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

// LMSSyncService pulls courses and enrollments from the learning platform
// into the local store. Runs are serialized; a trigger while a run is in
// flight is rejected rather than queued.
type LMSSyncService struct {
	client      LMSClient
	courses     lmsCourseRepository
	enrollments lmsEnrollmentRepository
	students    lmsStudentRepository
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time

	mu      sync.Mutex
	running bool
	last    *dto.LMSSyncResult
}

// NewLMSSyncService constructs the sync service.
func NewLMSSyncService(client LMSClient, courses lmsCourseRepository, enrollments lmsEnrollmentRepository, students lmsStudentRepository, cache *CacheService, logger *zap.Logger) *LMSSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LMSSyncService{
		client:      client,
		courses:     courses,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// LastResult returns the outcome of the most recent run, nil before any run.
func (s *LMSSyncService) LastResult() *dto.LMSSyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run performs one full synchronization pass.
func (s *LMSSyncService) Run(ctx context.Context) (*dto.LMSSyncResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrConflict, "a sync run is already in progress")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result := &dto.LMSSyncResult{StartedAt: s.now().UTC().Format(time.RFC3339)}

	if err := s.syncCourses(ctx, result); err != nil {
		return nil, err
	}
	if err := s.syncEnrollments(ctx, result); err != nil {
		return nil, err
	}

	result.FinishedAt = s.now().UTC().Format(time.RFC3339)
	s.logger.Info("lms sync finished",
		zap.Int("courses", result.CoursesUpserted),
		zap.Int("enrollments", result.EnrollmentsUpserted),
		zap.Int("skipped_unknown_users", result.SkippedUnknownUsers),
		zap.Int("errors", len(result.Errors)))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()
	return result, nil
}

// Start launches a background loop that runs a sync every interval until
// the context is cancelled.
func (s *LMSSyncService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					s.logger.Error("scheduled lms sync failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *LMSSyncService) syncCourses(ctx context.Context, result *dto.LMSSyncResult) error {
	for page := 1; ; page++ {
		coursePage, err := s.client.FetchCourses(ctx, page)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch lms courses")
		}
		for _, upstream := range coursePage.Courses {
			if err := s.upsertCourse(ctx, upstream); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("course %s: %v", upstream.ID, err))
				continue
			}
			result.CoursesUpserted++
		}
		if !coursePage.HasMore {
			return nil
		}
	}
}

func (s *LMSSyncService) upsertCourse(ctx context.Context, upstream dto.LMSCourse) error {
	lmsID := upstream.ID
	course := &models.Course{
		Name:        upstream.Title,
		BatchCode:   upstream.Code,
		Type:        models.CourseTypeOnline,
		Status:      strings.ToLower(upstream.Status.String()),
		Description: upstream.Description,
		StartDate:   upstream.StartAt(),
		EndDate:     upstream.EndAt(),
		IsLMSCourse: true,
		LMSCourseID: &lmsID,
	}
	return s.courses.UpsertLMSCourse(ctx, course)
}

func (s *LMSSyncService) syncEnrollments(ctx context.Context, result *dto.LMSSyncResult) error {
	for page := 1; ; page++ {
		enrollmentPage, err := s.client.FetchEnrollments(ctx, page)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch lms enrollments")
		}
		for _, upstream := range enrollmentPage.Enrollments {
			skipped, err := s.upsertEnrollment(ctx, upstream)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("enrollment %s/%s: %v", upstream.CourseID, upstream.UserEmail, err))
				continue
			}
			if skipped {
				result.SkippedUnknownUsers++
				continue
			}
			result.EnrollmentsUpserted++
		}
		if !enrollmentPage.HasMore {
			return nil
		}
	}
}

func (s *LMSSyncService) upsertEnrollment(ctx context.Context, upstream dto.LMSEnrollment) (bool, error) {
	student, err := s.students.FindByEmail(ctx, upstream.UserEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Platform accounts without a matching employee are skipped,
			// not errored; contractors often hold LMS seats.
			return true, nil
		}
		return false, err
	}
	course, err := s.courses.FindByLMSID(ctx, upstream.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("course %s not synced yet", upstream.CourseID)
		}
		return false, err
	}

	enrollment := &models.Enrollment{
		StudentID:         student.ID,
		CourseID:          course.ID,
		ApprovalStatus:    models.StatusValue(models.ApprovalApproved),
		EligibilityStatus: models.StatusValue(models.EligibilityEligible),
		CompletionStatus:  s.completionFor(upstream),
		IsLMSEnrollment:   true,
		Progress:          upstream.Progress,
	}
	return false, s.enrollments.UpsertLMSEnrollment(ctx, enrollment)
}

func (s *LMSSyncService) completionFor(upstream dto.LMSEnrollment) models.StatusValue {
	if !upstream.Status.Equals("") {
		return models.StatusValue(upstream.Status.String())
	}
	progress := 0.0
	if upstream.Progress != nil {
		progress = *upstream.Progress
	}
	switch {
	case progress >= 100:
		return models.StatusValue(models.CompletionCompleted)
	case progress > 0:
		return models.StatusValue(models.CompletionInProgress)
	default:
		return models.StatusValue(models.CompletionNotStarted)
	}
}
