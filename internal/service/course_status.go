package service

import (
	"strings"
	"time"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// DeriveCourseStatus resolves the lifecycle phase of a course. A stored
// status always wins and dates are ignored: "draft" maps to planning, any
// other stored value passes through lower-cased. Rows without a stored
// status fall back to date comparison at day granularity.
//
// A missing start date on the fallback path means the course is treated as
// already started: it derives to completed only when a past end date
// exists, otherwise ongoing. The legacy dashboard reached the same buckets
// through invalid-date comparisons; here the policy is explicit.
func DeriveCourseStatus(course models.Course, now time.Time) models.CourseLifecycle {
	if course.Status != "" {
		stored := strings.ToLower(course.Status)
		if stored == "draft" {
			return models.LifecyclePlanning
		}
		return models.CourseLifecycle(stored)
	}

	today := startOfDay(now)
	if course.StartDate != nil && startOfDay(*course.StartDate).After(today) {
		return models.LifecyclePlanning
	}
	if course.EndDate != nil && startOfDay(*course.EndDate).Before(today) {
		return models.LifecycleCompleted
	}
	return models.LifecycleOngoing
}

// CourseDisplayBucket refines the derived lifecycle into the three-way
// upcoming/ongoing/completed split used by list views:
//
//   - upcoming: lifecycle planning or ongoing, start date strictly after today
//   - completed: lifecycle completed, or lifecycle ongoing with a past end date
//   - ongoing: everything else (including undated courses)
func CourseDisplayBucket(course models.Course, now time.Time) models.CourseBucket {
	lifecycle := DeriveCourseStatus(course, now)
	today := startOfDay(now)

	if lifecycle == models.LifecycleCompleted {
		return models.BucketCompleted
	}

	startsLater := course.StartDate != nil && startOfDay(*course.StartDate).After(today)
	if startsLater && (lifecycle == models.LifecyclePlanning || lifecycle == models.LifecycleOngoing) {
		return models.BucketUpcoming
	}

	if lifecycle == models.LifecycleOngoing && course.EndDate != nil && startOfDay(*course.EndDate).Before(today) {
		return models.BucketCompleted
	}
	return models.BucketOngoing
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}
