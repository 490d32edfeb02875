package models

import "time"

// CourseType distinguishes how a training is delivered.
type CourseType string

const (
	CourseTypeOnsite   CourseType = "ONSITE"
	CourseTypeOnline   CourseType = "ONLINE"
	CourseTypeExternal CourseType = "EXTERNAL"
)

// Valid returns true when the type is a supported value.
func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeOnsite, CourseTypeOnline, CourseTypeExternal:
		return true
	default:
		return false
	}
}

// CourseLifecycle is the derived lifecycle phase of a course.
type CourseLifecycle string

const (
	LifecyclePlanning  CourseLifecycle = "planning"
	LifecycleOngoing   CourseLifecycle = "ongoing"
	LifecycleCompleted CourseLifecycle = "completed"
)

// CourseBucket is the temporal display bucket used by list views.
type CourseBucket string

const (
	BucketUpcoming  CourseBucket = "upcoming"
	BucketOngoing   CourseBucket = "ongoing"
	BucketCompleted CourseBucket = "completed"
)

// Course represents one training offering. Status may be empty for legacy
// rows, in which case the lifecycle is derived from the date fields.
type Course struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	BatchCode       string     `db:"batch_code" json:"batch_code"`
	Type            CourseType `db:"course_type" json:"course_type"`
	Status          string     `db:"status" json:"status,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	Prerequisite    *string    `db:"prerequisite" json:"prerequisite,omitempty"`
	SeatLimit       int        `db:"seat_limit" json:"seat_limit"`
	CurrentEnrolled int        `db:"current_enrolled" json:"current_enrolled"`
	IsLMSCourse     bool       `db:"is_lms_course" json:"is_lms_course"`
	LMSCourseID     *string    `db:"lms_course_id" json:"lms_course_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures list query parameters for courses.
type CourseFilter struct {
	Search    string
	Type      CourseType
	Bucket    CourseBucket
	Period    string
	Month     string
	Quarter   string
	Year      int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CourseDetail augments a course with its derived presentation fields.
type CourseDetail struct {
	Course
	Lifecycle CourseLifecycle `json:"lifecycle"`
	Bucket    CourseBucket    `json:"bucket"`
}
