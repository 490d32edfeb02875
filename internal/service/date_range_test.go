package service

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// Pin the process timezone so day-boundary math is deterministic.
func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

func TestResolvePeriodMonth(t *testing.T) {
	r := ResolvePeriod(PeriodMonth, "0", "", 2024)
	require.NotNil(t, r)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local), r.Start)
	assert.Equal(t, time.Date(2024, time.January, 31, 23, 59, 59, int(999*time.Millisecond), time.Local), r.End)

	// February of a leap year.
	feb := ResolvePeriod(PeriodMonth, "1", "", 2024)
	require.NotNil(t, feb)
	assert.Equal(t, 29, feb.End.Day())
}

func TestResolvePeriodQuarter(t *testing.T) {
	r := ResolvePeriod(PeriodQuarter, "", "2", 2024)
	require.NotNil(t, r)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), r.Start)
	assert.Equal(t, time.June, r.End.Month())
	assert.Equal(t, 30, r.End.Day())
}

func TestResolvePeriodYear(t *testing.T) {
	r := ResolvePeriod(PeriodYear, "", "", 2023)
	require.NotNil(t, r)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.Local), r.Start)
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.Local), r.End)
}

func TestResolvePeriodUnfiltered(t *testing.T) {
	assert.Nil(t, ResolvePeriod(PeriodAllTime, "", "", 2024))
	assert.Nil(t, ResolvePeriod("", "", "", 2024))
	assert.Nil(t, ResolvePeriod(PeriodMonth, "", "", 2024), "missing month means no filtering")
	assert.Nil(t, ResolvePeriod(PeriodMonth, "12", "", 2024), "month is zero-based, 12 is out of range")
	assert.Nil(t, ResolvePeriod(PeriodQuarter, "", "5", 2024))
}

func TestCourseInRange(t *testing.T) {
	r := ResolvePeriod(PeriodMonth, "0", "", 2024)
	require.NotNil(t, r)

	inside := models.Course{StartDate: datePtr(time.Date(2024, time.January, 15, 9, 0, 0, 0, time.Local))}
	outside := models.Course{StartDate: datePtr(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local))}
	lastDay := models.Course{StartDate: datePtr(time.Date(2024, time.January, 31, 23, 0, 0, 0, time.Local))}
	undated := models.Course{}

	assert.True(t, CourseInRange(inside, r))
	assert.False(t, CourseInRange(outside, r))
	assert.True(t, CourseInRange(lastDay, r), "range end is inclusive")
	assert.False(t, CourseInRange(undated, r))
}

func TestFlexTimeEncodingsAgreeAtDayGranularity(t *testing.T) {
	var fromUnix, fromISO models.FlexTime
	require.NoError(t, fromUnix.UnmarshalJSON([]byte("1704067200"))) // 2024-01-01T00:00:00Z
	require.NoError(t, fromISO.UnmarshalJSON([]byte(`"2024-01-01"`)))

	assert.Equal(t, startOfDay(fromUnix.Time), startOfDay(fromISO.Time))

	r := ResolvePeriod(PeriodMonth, "0", "", 2024)
	require.NotNil(t, r)
	assert.True(t, CourseInRange(models.Course{StartDate: datePtr(fromUnix.Time)}, r))
	assert.True(t, CourseInRange(models.Course{StartDate: datePtr(fromISO.Time)}, r))
}

func TestStatusValueUnwrapsBothShapes(t *testing.T) {
	var plain, wrapped models.StatusValue
	require.NoError(t, plain.UnmarshalJSON([]byte(`"Approved"`)))
	require.NoError(t, wrapped.UnmarshalJSON([]byte(`{"value":"Approved"}`)))
	assert.Equal(t, plain, wrapped)
	assert.True(t, wrapped.Equals(models.ApprovalApproved))
}
