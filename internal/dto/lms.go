package dto

import (
	"time"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// LMSCoursePage is one page of the learning platform's course listing.
type LMSCoursePage struct {
	Courses []LMSCourse `json:"courses"`
	Page    int         `json:"page"`
	HasMore bool        `json:"has_more"`
}

// LMSCourse mirrors the upstream course record. Date fields arrive either
// as Unix seconds or as ISO strings depending on the platform version, so
// they are decoded through FlexTime.
type LMSCourse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Code        string             `json:"code"`
	Description *string            `json:"description"`
	StartDate   *models.FlexTime   `json:"start_date"`
	EndDate     *models.FlexTime   `json:"end_date"`
	Status      models.StatusValue `json:"status"`
}

// StartAt returns the decoded start date, nil when the platform omitted it.
func (c LMSCourse) StartAt() *time.Time {
	if c.StartDate == nil {
		return nil
	}
	t := c.StartDate.Time
	return &t
}

// EndAt returns the decoded end date, nil when the platform omitted it.
func (c LMSCourse) EndAt() *time.Time {
	if c.EndDate == nil {
		return nil
	}
	t := c.EndDate.Time
	return &t
}

// LMSEnrollmentPage is one page of the platform's enrollment listing.
type LMSEnrollmentPage struct {
	Enrollments []LMSEnrollment `json:"enrollments"`
	Page        int             `json:"page"`
	HasMore     bool            `json:"has_more"`
}

// LMSEnrollment mirrors the upstream enrollment record.
type LMSEnrollment struct {
	CourseID    string             `json:"course_id"`
	UserEmail   string             `json:"user_email"`
	Progress    *float64           `json:"progress"`
	Status      models.StatusValue `json:"status"`
	CompletedAt *models.FlexTime   `json:"completed_at"`
}

// LMSSyncResult summarises one synchronization run.
type LMSSyncResult struct {
	CoursesUpserted     int      `json:"coursesUpserted"`
	EnrollmentsUpserted int      `json:"enrollmentsUpserted"`
	SkippedUnknownUsers int      `json:"skippedUnknownUsers"`
	Errors              []string `json:"errors,omitempty"`
	StartedAt           string   `json:"startedAt"`
	FinishedAt          string   `json:"finishedAt"`
}
