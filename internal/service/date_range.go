package service

import (
	"strconv"
	"time"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// Supported period selector values. Anything else means no filtering.
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodAllTime = "all_time"
)

// DateRange is an inclusive interval normalized to local midnight at the
// start and 23:59:59.999 at the end.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolvePeriod maps a period selector onto a concrete interval. A nil
// result means "no filtering" and callers must skip range checks entirely.
// Month is zero-based ("0"–"11"), quarter is "1"–"4"; a missing month or
// quarter yields nil, while year always carries a usable value.
func ResolvePeriod(period, month, quarter string, year int) *DateRange {
	switch period {
	case PeriodMonth:
		m, err := strconv.Atoi(month)
		if err != nil || m < 0 || m > 11 {
			return nil
		}
		start := time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, time.Local)
		return &DateRange{Start: start, End: endOfMonth(year, time.Month(m+1))}
	case PeriodQuarter:
		q, err := strconv.Atoi(quarter)
		if err != nil || q < 1 || q > 4 {
			return nil
		}
		startMonth := time.Month((q-1)*3 + 1)
		start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.Local)
		return &DateRange{Start: start, End: endOfMonth(year, startMonth+2)}
	case PeriodYear:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		return &DateRange{Start: start, End: endOfMonth(year, time.December)}
	default:
		return nil
	}
}

// Contains tests day-normalized inclusive membership.
func (r *DateRange) Contains(t time.Time) bool {
	day := startOfDay(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// CourseInRange reports whether the course's start date falls inside the
// range. Courses without a start date never match; a nil range must be
// short-circuited to "match all" by the caller before getting here.
func CourseInRange(course models.Course, r *DateRange) bool {
	start := CourseStartDate(course)
	if start == nil {
		return false
	}
	return r.Contains(*start)
}

// CourseStartDate returns the course start regardless of which upstream
// date encoding populated the record.
func CourseStartDate(course models.Course) *time.Time {
	return course.StartDate
}

// CourseEndDate mirrors CourseStartDate for the end of the course.
func CourseEndDate(course models.Course) *time.Time {
	return course.EndDate
}

// endOfMonth returns the last instant tracked for the given month; day 0
// of the following month normalizes to that month's final calendar day.
func endOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 23, 59, 59, int(999*time.Millisecond), time.Local)
}
