package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/service"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/response"
)

// MentorHandler wires mentors and the assignment workflow to HTTP endpoints.
type MentorHandler struct {
	service *service.MentorService
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(svc *service.MentorService) *MentorHandler {
	return &MentorHandler{service: svc}
}

// List godoc
// @Summary List mentors
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.service.ListMentors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// Create godoc
// @Summary Register a mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body dto.CreateMentorRequest true "Mentor definition"
// @Success 201 {object} response.Envelope
// @Router /mentors [post]
func (h *MentorHandler) Create(c *gin.Context) {
	var req dto.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor payload"))
		return
	}
	mentor, err := h.service.CreateMentor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// ListAssignments godoc
// @Summary List mentor assignments
// @Tags Mentors
// @Produce json
// @Param courseId query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *MentorHandler) ListAssignments(c *gin.Context) {
	details, err := h.service.ListAssignments(c.Request.Context(), strings.TrimSpace(c.Query("courseId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.AssignmentResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, dto.NewAssignmentResponse(detail))
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Draft godoc
// @Summary Draft a mentor assignment for a course
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment proposal"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *MentorHandler) Draft(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Draft(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Revise godoc
// @Summary Revise a draft assignment
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *MentorHandler) Revise(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Revise(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Approve godoc
// @Summary Approve a draft assignment
// @Tags Mentors
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/approve [post]
func (h *MentorHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignment, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Discrepancy godoc
// @Summary Compare a course's draft against its approved assignment
// @Tags Mentors
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/assignment-discrepancy [get]
func (h *MentorHandler) Discrepancy(c *gin.Context) {
	discrepancy, err := h.service.Discrepancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, discrepancy, nil)
}
