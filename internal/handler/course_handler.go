package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/service"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/response"
)

// CourseHandler wires course use-cases to HTTP endpoints.
type CourseHandler struct {
	service     *service.CourseService
	enrollments *service.EnrollmentService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc *service.CourseService, enrollments *service.EnrollmentService) *CourseHandler {
	return &CourseHandler{service: svc, enrollments: enrollments}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by name or batch code"
// @Param type query string false "Course type (ONSITE, ONLINE, EXTERNAL)"
// @Param bucket query string false "Display bucket (upcoming, ongoing, completed)"
// @Param period query string false "Reporting period (month, quarter, year, all_time)"
// @Param month query string false "Month selector 0-11"
// @Param quarter query string false "Quarter selector 1-4"
// @Param year query int false "Year"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := courseFilterFromQuery(c)
	details, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.CourseResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, dto.NewCourseResponse(detail))
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Overview godoc
// @Summary Courses grouped by display bucket
// @Tags Courses
// @Produce json
// @Param period query string false "Reporting period (month, quarter, year, all_time)"
// @Param month query string false "Month selector 0-11"
// @Param quarter query string false "Quarter selector 1-4"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /courses/overview [get]
func (h *CourseHandler) Overview(c *gin.Context) {
	filter := courseFilterFromQuery(c)
	overview, err := h.service.Overview(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Get godoc
// @Summary Course detail
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewCourseResponse(*detail), nil)
}

// Create godoc
// @Summary Create a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course definition"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	detail, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewCourseResponse(*detail))
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	detail, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewCourseResponse(*detail), nil)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Buckets godoc
// @Summary Course enrollments partitioned into display buckets
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *CourseHandler) Buckets(c *gin.Context) {
	onsite, online, err := h.enrollments.CourseBuckets(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if online != nil {
		response.JSON(c, http.StatusOK, online, nil)
		return
	}
	response.JSON(c, http.StatusOK, onsite, nil)
}

// Completion godoc
// @Summary Completion statistics for one course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/completion [get]
func (h *CourseHandler) Completion(c *gin.Context) {
	stats, err := h.enrollments.Completion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func courseFilterFromQuery(c *gin.Context) models.CourseFilter {
	filter := models.CourseFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Type:      models.CourseType(strings.ToUpper(strings.TrimSpace(c.Query("type")))),
		Period:    strings.TrimSpace(c.Query("period")),
		Month:     strings.TrimSpace(c.Query("month")),
		Quarter:   strings.TrimSpace(c.Query("quarter")),
		SortBy:    strings.TrimSpace(c.Query("sortBy")),
		SortOrder: strings.TrimSpace(c.Query("sortOrder")),
	}
	switch bucket := models.CourseBucket(strings.ToLower(strings.TrimSpace(c.Query("bucket")))); bucket {
	case models.BucketUpcoming, models.BucketOngoing, models.BucketCompleted:
		filter.Bucket = bucket
	}
	filter.Year = time.Now().Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.Year = parsed
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return filter
}
