package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseService handles course use-cases, deriving lifecycle and display
// buckets on the way out so callers never see raw stored status.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns courses with derived fields plus pagination metadata.
// Window and bucket filters depend on the derived status, so when either is
// requested the set is loaded whole, filtered here and paginated in memory;
// otherwise filtering and pagination stay in SQL.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	window := ResolvePeriod(filter.Period, filter.Month, filter.Quarter, filter.Year)
	if window == nil && filter.Bucket == "" {
		courses, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		now := s.now()
		details := make([]models.CourseDetail, 0, len(courses))
		for _, course := range courses {
			details = append(details, s.derive(course, now))
		}
		return details, listPagination(filter, total), nil
	}

	courses, err := s.repo.ListAll(ctx, filter.Type)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	now := s.now()
	details := make([]models.CourseDetail, 0, len(courses))
	for _, course := range courses {
		if !courseMatchesSearch(course, filter.Search) {
			continue
		}
		if window != nil && !CourseInRange(course, window) {
			continue
		}
		detail := s.derive(course, now)
		if filter.Bucket != "" && detail.Bucket != filter.Bucket {
			continue
		}
		details = append(details, detail)
	}
	sortCourseDetails(details, filter.SortBy, filter.SortOrder)

	total := len(details)
	pagination := listPagination(filter, total)
	start := (pagination.Page - 1) * pagination.PageSize
	if start > total {
		start = total
	}
	end := start + pagination.PageSize
	if end > total {
		end = total
	}
	return details[start:end], pagination, nil
}

func listPagination(filter models.CourseFilter, total int) *models.Pagination {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func courseMatchesSearch(course models.Course, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(course.Name), needle) ||
		strings.Contains(strings.ToLower(course.BatchCode), needle)
}

// sortCourseDetails mirrors the repository's allow-listed sort columns for
// the in-memory path. Missing start dates sort last, matching NULLS LAST.
func sortCourseDetails(details []models.CourseDetail, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "ASC")
	less := func(a, b models.CourseDetail) bool {
		switch sortBy {
		case "name":
			return a.Name < b.Name
		case "batch_code":
			return a.BatchCode < b.BatchCode
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.StartDate.Before(*b.StartDate)
		}
	}
	byStartDate := sortBy != "name" && sortBy != "batch_code" && sortBy != "created_at"
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if byStartDate {
			if a.StartDate == nil {
				return false
			}
			if b.StartDate == nil {
				return true
			}
		}
		if asc {
			return less(a, b)
		}
		return less(b, a)
	})
}

// Overview groups all matching courses into upcoming, ongoing and completed
// buckets for the requested reporting window. Bucket membership depends on
// derived status, so the split happens here rather than in SQL.
func (s *CourseService) Overview(ctx context.Context, filter models.CourseFilter) (*dto.CourseListResponse, error) {
	courses, err := s.repo.ListAll(ctx, filter.Type)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	window := ResolvePeriod(filter.Period, filter.Month, filter.Quarter, filter.Year)
	now := s.now()
	result := &dto.CourseListResponse{
		Upcoming:  []dto.CourseResponse{},
		Ongoing:   []dto.CourseResponse{},
		Completed: []dto.CourseResponse{},
	}
	for _, course := range courses {
		if window != nil && !CourseInRange(course, window) {
			continue
		}
		detail := s.derive(course, now)
		resp := dto.NewCourseResponse(detail)
		switch detail.Bucket {
		case models.BucketUpcoming:
			result.Upcoming = append(result.Upcoming, resp)
		case models.BucketCompleted:
			result.Completed = append(result.Completed, resp)
		default:
			result.Ongoing = append(result.Ongoing, resp)
		}
	}
	return result, nil
}

// Get returns a single course with derived fields.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	detail := s.derive(*course, s.now())
	return &detail, nil
}

// Create registers a new course. LMS-sourced courses come in through the
// sync pipeline, never through this path.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.CourseDetail, error) {
	courseType := req.Type
	if courseType == "" {
		courseType = models.CourseTypeOnsite
	}
	if !courseType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course type")
	}
	start := flexToTime(req.StartDate)
	end := flexToTime(req.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	if req.SeatLimit < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "seat limit must not be negative")
	}

	course := &models.Course{
		Name:        req.Name,
		BatchCode:   req.BatchCode,
		Type:        courseType,
		Status:      req.Status,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		SeatLimit:   req.SeatLimit,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidate(ctx)
	detail := s.derive(*course, s.now())
	return &detail, nil
}

// Update applies the provided fields to an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.IsLMSCourse {
		return nil, appErrors.Clone(appErrors.ErrConflict, "synced courses are managed by the learning platform")
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.StartDate != nil {
		course.StartDate = flexToTime(req.StartDate)
	}
	if req.EndDate != nil {
		course.EndDate = flexToTime(req.EndDate)
	}
	if req.SeatLimit != nil {
		if *req.SeatLimit < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "seat limit must not be negative")
		}
		course.SeatLimit = *req.SeatLimit
	}
	if course.StartDate != nil && course.EndDate != nil && course.EndDate.Before(*course.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidate(ctx)
	detail := s.derive(*course, s.now())
	return &detail, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) derive(course models.Course, now time.Time) models.CourseDetail {
	return models.CourseDetail{
		Course:    course,
		Lifecycle: DeriveCourseStatus(course, now),
		Bucket:    CourseDisplayBucket(course, now),
	}
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func flexToTime(ft *models.FlexTime) *time.Time {
	if ft == nil {
		return nil
	}
	t := ft.Time
	return &t
}
