package dto

import (
	"time"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// CreateCourseRequest captures POST /courses payload.
type CreateCourseRequest struct {
	Name        string            `json:"name" binding:"required"`
	BatchCode   string            `json:"batchCode" binding:"required"`
	Type        models.CourseType `json:"type" binding:"required"`
	Status      string            `json:"status"`
	Description *string           `json:"description"`
	StartDate   *models.FlexTime  `json:"startDate"`
	EndDate     *models.FlexTime  `json:"endDate"`
	SeatLimit   int               `json:"seatLimit"`
}

// UpdateCourseRequest captures PUT /courses/:id payload. Pointer fields
// distinguish "leave unchanged" from "clear".
type UpdateCourseRequest struct {
	Name        *string          `json:"name"`
	Status      *string          `json:"status"`
	Description *string          `json:"description"`
	StartDate   *models.FlexTime `json:"startDate"`
	EndDate     *models.FlexTime `json:"endDate"`
	SeatLimit   *int             `json:"seatLimit"`
}

// CourseResponse is the canonical course representation on the wire.
type CourseResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	BatchCode       string                 `json:"batchCode"`
	Type            models.CourseType      `json:"type"`
	Status          models.CourseLifecycle `json:"status"`
	Description     *string                `json:"description,omitempty"`
	StartDate       *time.Time             `json:"startDate,omitempty"`
	EndDate         *time.Time             `json:"endDate,omitempty"`
	SeatLimit       int                    `json:"seatLimit"`
	CurrentEnrolled int                    `json:"currentEnrolled"`
	IsLMSCourse     bool                   `json:"isLmsCourse"`
}

// NewCourseResponse maps a derived course detail onto the wire shape.
func NewCourseResponse(detail models.CourseDetail) CourseResponse {
	return CourseResponse{
		ID:              detail.ID,
		Name:            detail.Name,
		BatchCode:       detail.BatchCode,
		Type:            detail.Type,
		Status:          detail.Lifecycle,
		Description:     detail.Description,
		StartDate:       detail.StartDate,
		EndDate:         detail.EndDate,
		SeatLimit:       detail.SeatLimit,
		CurrentEnrolled: detail.CurrentEnrolled,
		IsLMSCourse:     detail.IsLMSCourse,
	}
}

// CourseListResponse groups derived courses into display buckets.
type CourseListResponse struct {
	Upcoming  []CourseResponse `json:"upcoming"`
	Ongoing   []CourseResponse `json:"ongoing"`
	Completed []CourseResponse `json:"completed"`
}
