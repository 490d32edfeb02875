package models

import "time"

// Approval statuses carried on an enrollment, independent of eligibility.
const (
	ApprovalApproved  = "Approved"
	ApprovalPending   = "Pending"
	ApprovalRejected  = "Rejected"
	ApprovalWithdrawn = "Withdrawn"
)

// Eligibility statuses. Ineligible values keep the reason in the string,
// matching the upstream serializer contract.
const (
	EligibilityEligible            = "Eligible"
	EligibilityMissingPrerequisite = "Ineligible (Missing Prerequisite)"
	EligibilityAlreadyTaken        = "Ineligible (Already Taken)"
	EligibilityAnnualLimit         = "Ineligible (Annual Limit)"
)

// Completion statuses, independent of approval.
const (
	CompletionNotStarted = "Not Started"
	CompletionInProgress = "In Progress"
	CompletionCompleted  = "Completed"
	CompletionFailed     = "Failed"
)

// Enrollment ties a student to a course together with its approval,
// eligibility and completion state. Status fields use StatusValue so both
// upstream enum encodings normalize before any comparison runs.
type Enrollment struct {
	ID                string      `db:"id" json:"id"`
	StudentID         string      `db:"student_id" json:"student_id"`
	CourseID          string      `db:"course_id" json:"course_id"`
	ApprovalStatus    StatusValue `db:"approval_status" json:"approval_status"`
	EligibilityStatus StatusValue `db:"eligibility_status" json:"eligibility_status"`
	CompletionStatus  StatusValue `db:"completion_status" json:"completion_status"`
	Score             *float64    `db:"score" json:"score,omitempty"`
	AttendancePct     *float64    `db:"attendance_percentage" json:"attendance_percentage,omitempty"`
	PresentCount      *int        `db:"present_count" json:"present,omitempty"`
	TotalSessions     *int        `db:"total_sessions" json:"total_attendance,omitempty"`
	IsLMSEnrollment   bool        `db:"is_lms_enrollment" json:"is_lms_enrollment"`
	Progress          *float64    `db:"progress" json:"progress,omitempty"`
	EnrolledAt        time.Time   `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// EnrollmentFilter captures list query parameters for enrollments.
type EnrollmentFilter struct {
	StudentID      string
	CourseID       string
	ApprovalStatus string
	Completion     string
	LMSOnly        *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// EnrollmentDetail joins student and course context onto an enrollment.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
	BatchCode   string `db:"batch_code" json:"batch_code"`
}
