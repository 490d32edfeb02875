package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

type courseRepoStub struct {
	courses map[string]*models.Course
	all     []models.Course
	created *models.Course
	updated *models.Course
}

func newCourseRepoStub() *courseRepoStub {
	return &courseRepoStub{courses: map[string]*models.Course{}}
}

func (r *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	return r.all, len(r.all), nil
}

func (r *courseRepoStub) ListAll(ctx context.Context, courseType models.CourseType) ([]models.Course, error) {
	return r.all, nil
}

func (r *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *course
	return &clone, nil
}

func (r *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = "course-new"
	r.created = course
	return nil
}

func (r *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	r.updated = course
	return nil
}

func (r *courseRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.courses, id)
	return nil
}

func newCourseServiceForTest(repo *courseRepoStub, now time.Time) *CourseService {
	svc := NewCourseService(repo, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCourseServiceOverviewBuckets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -2, 0)
	pastEnd := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)
	futureEnd := now.AddDate(0, 2, 0)

	repo := newCourseRepoStub()
	repo.all = []models.Course{
		{ID: "c1", Name: "Docker Basics", StartDate: &future, EndDate: &futureEnd},
		{ID: "c2", Name: "Go Fundamentals", StartDate: &past, EndDate: &future},
		{ID: "c3", Name: "SQL Tuning", StartDate: &past, EndDate: &pastEnd},
	}
	svc := newCourseServiceForTest(repo, now)

	overview, err := svc.Overview(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, overview.Upcoming, 1)
	require.Len(t, overview.Ongoing, 1)
	require.Len(t, overview.Completed, 1)
	assert.Equal(t, "c1", overview.Upcoming[0].ID)
	assert.Equal(t, "c2", overview.Ongoing[0].ID)
	assert.Equal(t, "c3", overview.Completed[0].ID)
}

func TestCourseServiceOverviewRespectsWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	march := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	july := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)

	repo := newCourseRepoStub()
	repo.all = []models.Course{
		{ID: "c1", Name: "March Course", StartDate: &march},
		{ID: "c2", Name: "July Course", StartDate: &july},
	}
	svc := newCourseServiceForTest(repo, now)

	overview, err := svc.Overview(context.Background(), models.CourseFilter{
		Period:  PeriodQuarter,
		Quarter: "1",
		Year:    2024,
	})
	require.NoError(t, err)
	total := len(overview.Upcoming) + len(overview.Ongoing) + len(overview.Completed)
	require.Equal(t, 1, total)
	assert.Equal(t, "c1", overview.Ongoing[0].ID)
}

func TestCourseServiceListRespectsWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	january := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	repo := newCourseRepoStub()
	repo.all = []models.Course{
		{ID: "c1", Name: "January Course", StartDate: &january},
		{ID: "c2", Name: "June Course", StartDate: &june},
	}
	svc := newCourseServiceForTest(repo, now)

	details, pagination, err := svc.List(context.Background(), models.CourseFilter{
		Period: PeriodMonth,
		Month:  "0",
		Year:   2024,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "c1", details[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestCourseServiceListFiltersByBucket(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -2, 0)
	pastEnd := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	repo := newCourseRepoStub()
	repo.all = []models.Course{
		{ID: "c1", Name: "Upcoming Course", StartDate: &future},
		{ID: "c2", Name: "Running Course", StartDate: &past, EndDate: &future},
		{ID: "c3", Name: "Finished Course", StartDate: &past, EndDate: &pastEnd},
	}
	svc := newCourseServiceForTest(repo, now)

	details, pagination, err := svc.List(context.Background(), models.CourseFilter{
		Bucket: models.BucketCompleted,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "c3", details[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestCourseServiceListPaginatesFilteredSet(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newCourseRepoStub()
	for _, id := range []string{"c1", "c2", "c3"} {
		start := now.AddDate(0, 0, -len(id))
		repo.all = append(repo.all, models.Course{ID: id, Name: id, StartDate: &start})
	}
	svc := newCourseServiceForTest(repo, now)

	details, pagination, err := svc.List(context.Background(), models.CourseFilter{
		Bucket:   models.BucketOngoing,
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)
}

func TestCourseServiceCreateDefaultsTypeToOnsite(t *testing.T) {
	repo := newCourseRepoStub()
	svc := newCourseServiceForTest(repo, time.Now())

	detail, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Name:      "Kubernetes 101",
		BatchCode: "K8S-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CourseTypeOnsite, detail.Type)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.CourseTypeOnsite, repo.created.Type)
}

func TestCourseServiceCreateRejectsInvertedDates(t *testing.T) {
	repo := newCourseRepoStub()
	svc := newCourseServiceForTest(repo, time.Now())

	start := models.FlexTime{Time: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)}
	end := models.FlexTime{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Name:      "Broken Dates",
		BatchCode: "BD-01",
		StartDate: &start,
		EndDate:   &end,
	})
	require.Error(t, err)
	assert.Nil(t, repo.created)
}

func TestCourseServiceUpdateRejectsSyncedCourse(t *testing.T) {
	repo := newCourseRepoStub()
	repo.courses["c1"] = &models.Course{ID: "c1", Name: "Synced", IsLMSCourse: true}
	svc := newCourseServiceForTest(repo, time.Now())

	name := "Renamed"
	_, err := svc.Update(context.Background(), "c1", dto.UpdateCourseRequest{Name: &name})
	require.Error(t, err)
	assert.Nil(t, repo.updated)
}

func TestCourseServiceGetDerivesLifecycle(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 1, 0)
	repo := newCourseRepoStub()
	repo.courses["c1"] = &models.Course{ID: "c1", Name: "Live", StartDate: &start, EndDate: &end}
	svc := newCourseServiceForTest(repo, now)

	detail, err := svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleOngoing, detail.Lifecycle)
	assert.Equal(t, models.BucketOngoing, detail.Bucket)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	svc := newCourseServiceForTest(newCourseRepoStub(), time.Now())
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
}
