package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

func courseFilterFor(t *testing.T, rawQuery string) models.CourseFilter {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodGet, "/courses?"+rawQuery, nil)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return courseFilterFromQuery(c)
}

func TestCourseFilterFromQueryBucket(t *testing.T) {
	filter := courseFilterFor(t, "bucket=completed&period=month&month=0&year=2024")
	assert.Equal(t, models.BucketCompleted, filter.Bucket)
	assert.Equal(t, "month", filter.Period)
	assert.Equal(t, "0", filter.Month)
	assert.Equal(t, 2024, filter.Year)
}

func TestCourseFilterFromQueryIgnoresUnknownBucket(t *testing.T) {
	filter := courseFilterFor(t, "bucket=archived")
	assert.Empty(t, filter.Bucket)
}
