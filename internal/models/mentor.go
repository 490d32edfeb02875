package models

import "time"

// Mentor represents an internal or external trainer available for courses.
type Mentor struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Expertise string    `db:"expertise" json:"expertise"`
	External  bool      `db:"external" json:"external"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentState tracks the draft/approved workflow of a mentor assignment.
type AssignmentState string

const (
	AssignmentStateDraft    AssignmentState = "DRAFT"
	AssignmentStateApproved AssignmentState = "APPROVED"
	AssignmentStateArchived AssignmentState = "ARCHIVED"
)

// MentorAssignment binds a mentor to a course with a session cost. Draft
// rows carry proposed values until a coordinator approves them.
type MentorAssignment struct {
	ID          string          `db:"id" json:"id"`
	CourseID    string          `db:"course_id" json:"course_id"`
	MentorID    string          `db:"mentor_id" json:"mentor_id"`
	SessionCost float64         `db:"session_cost" json:"session_cost"`
	State       AssignmentState `db:"state" json:"state"`
	ApprovedBy  *string         `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// MentorAssignmentDetail joins mentor context onto an assignment row.
type MentorAssignmentDetail struct {
	MentorAssignment
	MentorName string `db:"mentor_name" json:"mentor_name"`
	CourseName string `db:"course_name" json:"course_name"`
}

// AssignmentDiscrepancy reports how an unapproved draft diverges from the
// approved assignment on the same course.
type AssignmentDiscrepancy struct {
	CourseID         string  `json:"course_id"`
	ApprovedMentorID string  `json:"approved_mentor_id"`
	DraftMentorID    string  `json:"draft_mentor_id"`
	MentorChanged    bool    `json:"mentor_changed"`
	ApprovedCost     float64 `json:"approved_cost"`
	DraftCost        float64 `json:"draft_cost"`
	CostDelta        float64 `json:"cost_delta"`
}
