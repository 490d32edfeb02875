package dto

import "github.com/LnD-Brainstaiton/ld-training-api/internal/models"

// CreateMentorRequest captures POST /mentors payload.
type CreateMentorRequest struct {
	FullName  string `json:"fullName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Expertise string `json:"expertise"`
	External  bool   `json:"external"`
}

// CreateAssignmentRequest drafts a mentor onto a course.
type CreateAssignmentRequest struct {
	CourseID    string  `json:"courseId" binding:"required"`
	MentorID    string  `json:"mentorId" binding:"required"`
	SessionCost float64 `json:"sessionCost"`
}

// UpdateAssignmentRequest revises a draft assignment before approval.
type UpdateAssignmentRequest struct {
	MentorID    *string  `json:"mentorId"`
	SessionCost *float64 `json:"sessionCost"`
}

// AssignmentResponse is the wire shape for a mentor assignment.
type AssignmentResponse struct {
	ID          string                 `json:"id"`
	CourseID    string                 `json:"courseId"`
	CourseName  string                 `json:"courseName,omitempty"`
	MentorID    string                 `json:"mentorId"`
	MentorName  string                 `json:"mentorName,omitempty"`
	SessionCost float64                `json:"sessionCost"`
	State       models.AssignmentState `json:"state"`
	ApprovedBy  *string                `json:"approvedBy,omitempty"`
}

// NewAssignmentResponse maps an assignment detail onto the wire shape.
func NewAssignmentResponse(detail models.MentorAssignmentDetail) AssignmentResponse {
	return AssignmentResponse{
		ID:          detail.ID,
		CourseID:    detail.CourseID,
		CourseName:  detail.CourseName,
		MentorID:    detail.MentorID,
		MentorName:  detail.MentorName,
		SessionCost: detail.SessionCost,
		State:       detail.State,
		ApprovedBy:  detail.ApprovedBy,
	}
}
