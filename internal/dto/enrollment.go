package dto

import (
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// CreateEnrollmentRequest captures POST /enrollments payload.
type CreateEnrollmentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	CourseID  string `json:"courseId" binding:"required"`
}

// ApprovalDecisionRequest carries an approve/reject decision.
type ApprovalDecisionRequest struct {
	Reason *string `json:"reason"`
}

// RecordCompletionRequest captures the outcome of an onsite course run.
type RecordCompletionRequest struct {
	CompletionStatus string   `json:"completionStatus" binding:"required"`
	Score            *float64 `json:"score"`
	PresentCount     *int     `json:"presentCount"`
	TotalSessions    *int     `json:"totalSessions"`
}

// EnrollmentResponse is the wire shape for a single enrollment.
type EnrollmentResponse struct {
	ID                string   `json:"id"`
	StudentID         string   `json:"studentId"`
	StudentName       string   `json:"studentName,omitempty"`
	CourseID          string   `json:"courseId"`
	CourseName        string   `json:"courseName,omitempty"`
	BatchCode         string   `json:"batchCode,omitempty"`
	ApprovalStatus    string   `json:"approvalStatus"`
	EligibilityStatus string   `json:"eligibilityStatus"`
	CompletionStatus  string   `json:"completionStatus"`
	Score             *float64 `json:"score,omitempty"`
	AttendancePct     *float64 `json:"attendancePercentage,omitempty"`
	Progress          *float64 `json:"progress,omitempty"`
	IsLMSEnrollment   bool     `json:"isLmsEnrollment"`
}

// NewEnrollmentResponse maps an enrollment detail onto the wire shape.
func NewEnrollmentResponse(detail models.EnrollmentDetail) EnrollmentResponse {
	return EnrollmentResponse{
		ID:                detail.ID,
		StudentID:         detail.StudentID,
		StudentName:       detail.StudentName,
		CourseID:          detail.CourseID,
		CourseName:        detail.CourseName,
		BatchCode:         detail.BatchCode,
		ApprovalStatus:    detail.ApprovalStatus.String(),
		EligibilityStatus: detail.EligibilityStatus.String(),
		CompletionStatus:  detail.CompletionStatus.String(),
		Score:             detail.Score,
		AttendancePct:     detail.AttendancePct,
		Progress:          detail.Progress,
		IsLMSEnrollment:   detail.IsLMSEnrollment,
	}
}

// OnsiteBucketsResponse partitions onsite enrollments for the course view.
type OnsiteBucketsResponse struct {
	Approved        []EnrollmentResponse `json:"approved"`
	EligiblePending []EnrollmentResponse `json:"eligiblePending"`
	NotEligible     []EnrollmentResponse `json:"notEligible"`
	Rejected        []EnrollmentResponse `json:"rejected"`
	Withdrawn       []EnrollmentResponse `json:"withdrawn"`
	Unclassified    []EnrollmentResponse `json:"unclassified"`
}

// OnlineBucketsResponse partitions LMS enrollments by progress.
type OnlineBucketsResponse struct {
	Completed  []EnrollmentResponse `json:"completed"`
	InProgress []EnrollmentResponse `json:"inProgress"`
	NotStarted []EnrollmentResponse `json:"notStarted"`
}
