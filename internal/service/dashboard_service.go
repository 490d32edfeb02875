package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
)

type dashboardCourseRepository interface {
	ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error)
}

type dashboardEnrollmentRepository interface {
	ListAll(ctx context.Context) ([]models.Enrollment, error)
}

type dashboardAssignmentRepository interface {
	ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error)
}

type dashboardStudentRepository interface {
	DepartmentHeadcounts(ctx context.Context) ([]models.DepartmentHeadcount, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	TopCoursesMax  int
	DepartmentsMax int
}

// DashboardService composes the aggregated training dashboard. Results are
// cached per reporting window; any write through the other services
// invalidates the dash:* keyspace.
type DashboardService struct {
	courses     dashboardCourseRepository
	enrollments dashboardEnrollmentRepository
	assignments dashboardAssignmentRepository
	students    dashboardStudentRepository
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Courses     dashboardCourseRepository
	Enrollments dashboardEnrollmentRepository
	Assignments dashboardAssignmentRepository
	Students    dashboardStudentRepository
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopCoursesMax <= 0 {
		cfg.TopCoursesMax = 5
	}
	if cfg.DepartmentsMax <= 0 {
		cfg.DepartmentsMax = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		courses:     params.Courses,
		enrollments: params.Enrollments,
		assignments: params.Assignments,
		students:    params.Students,
		cache:       params.Cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Summary returns the dashboard for the requested reporting window and
// indicates whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context, period, month, quarter string, year int) (*dto.DashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:summary:%s:%s:%s:%d", period, month, quarter, year)
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx, period, month, quarter, year)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context, period, month, quarter string, year int) (*dto.DashboardResponse, error) {
	window := ResolvePeriod(period, month, quarter, year)

	courses, err := s.courses.ListAll(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	enrollments, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	inWindow := make(map[string]models.Course)
	now := s.now()
	courseCounts := dto.DashboardCourses{}
	for _, course := range courses {
		if window != nil && !CourseInRange(course, window) {
			continue
		}
		inWindow[course.ID] = course
		switch CourseDisplayBucket(course, now) {
		case models.BucketUpcoming:
			courseCounts.Upcoming++
		case models.BucketCompleted:
			courseCounts.Completed++
		default:
			courseCounts.Ongoing++
		}
	}

	var onsiteEnrollments, onlineEnrollments []models.Enrollment
	for _, enrollment := range enrollments {
		course, ok := inWindow[enrollment.CourseID]
		if !ok {
			continue
		}
		if course.Type == models.CourseTypeOnline || course.IsLMSCourse {
			onlineEnrollments = append(onlineEnrollments, enrollment)
		} else {
			onsiteEnrollments = append(onsiteEnrollments, enrollment)
		}
	}
	onsiteStats := AggregateCompletion(onsiteEnrollments, models.CourseTypeOnsite)
	onlineStats := AggregateCompletion(onlineEnrollments, models.CourseTypeOnline)

	mentorCosts, err := s.mentorCosts(ctx, inWindow)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Period:  s.describeWindow(period, window),
		Courses: courseCounts,
		Completion: dto.DashboardCompletion{
			Onsite: dto.CompletionSummary{Rate: onsiteStats.Rate, Completed: onsiteStats.Completed, Total: onsiteStats.Total},
			Online: dto.CompletionSummary{Rate: onlineStats.Rate, Completed: onlineStats.Completed, Total: onlineStats.Total},
		},
		Mentors: mentorCosts,
		Top: dto.DashboardLeaderboards{
			CoursesByEnrollment: s.topCourses(inWindow),
			Departments:         s.departmentCounts(ctx),
		},
	}, nil
}

func (s *DashboardService) mentorCosts(ctx context.Context, inWindow map[string]models.Course) (dto.DashboardMentorCosts, error) {
	costs := dto.DashboardMentorCosts{}
	if s.assignments == nil {
		return costs, nil
	}
	assignments, err := s.assignments.ListAssignments(ctx, "")
	if err != nil {
		return costs, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	for _, assignment := range assignments {
		if assignment.State != models.AssignmentStateApproved {
			continue
		}
		if _, ok := inWindow[assignment.CourseID]; !ok {
			continue
		}
		costs.TotalCost += assignment.SessionCost
		costs.AssignedCount++
	}
	return costs, nil
}

func (s *DashboardService) topCourses(inWindow map[string]models.Course) []dto.CourseEnrollmentCount {
	ranked := make([]dto.CourseEnrollmentCount, 0, len(inWindow))
	for _, course := range inWindow {
		ranked = append(ranked, dto.CourseEnrollmentCount{
			CourseID:  course.ID,
			Name:      course.Name,
			BatchCode: course.BatchCode,
			Enrolled:  course.CurrentEnrolled,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Enrolled == ranked[j].Enrolled {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].Enrolled > ranked[j].Enrolled
	})
	if len(ranked) > s.cfg.TopCoursesMax {
		ranked = ranked[:s.cfg.TopCoursesMax]
	}
	return ranked
}

func (s *DashboardService) departmentCounts(ctx context.Context) []dto.DepartmentCount {
	if s.students == nil {
		return nil
	}
	headcounts, err := s.students.DepartmentHeadcounts(ctx)
	if err != nil {
		s.logger.Warn("department headcount fetch failed", zap.Error(err))
		return nil
	}
	counts := make([]dto.DepartmentCount, 0, len(headcounts))
	for i, hc := range headcounts {
		if i >= s.cfg.DepartmentsMax {
			break
		}
		counts = append(counts, dto.DepartmentCount{Department: hc.Department, Students: hc.Students})
	}
	return counts
}

func (s *DashboardService) describeWindow(period string, window *DateRange) dto.PeriodDescriptor {
	descriptor := dto.PeriodDescriptor{Period: period}
	if descriptor.Period == "" {
		descriptor.Period = PeriodAllTime
	}
	if window != nil {
		start := window.Start.Format("2006-01-02")
		end := window.End.Format("2006-01-02")
		descriptor.Start = &start
		descriptor.End = &end
	}
	return descriptor
}
