package dto

// DashboardResponse captures the aggregated training dashboard payload.
type DashboardResponse struct {
	Period     PeriodDescriptor      `json:"period"`
	Courses    DashboardCourses      `json:"courses"`
	Completion DashboardCompletion   `json:"completion"`
	Mentors    DashboardMentorCosts  `json:"mentors"`
	Top        DashboardLeaderboards `json:"top"`
}

// PeriodDescriptor echoes the resolved reporting window back to the caller.
type PeriodDescriptor struct {
	Period string  `json:"period"`
	Start  *string `json:"start,omitempty"`
	End    *string `json:"end,omitempty"`
}

// DashboardCourses counts courses per display bucket within the window.
type DashboardCourses struct {
	Upcoming  int `json:"upcoming"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
}

// DashboardCompletion summarises completion per course type.
type DashboardCompletion struct {
	Onsite CompletionSummary `json:"onsite"`
	Online CompletionSummary `json:"online"`
}

// CompletionSummary is the completion rate with its underlying counts.
type CompletionSummary struct {
	Rate      float64 `json:"rate"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
}

// DashboardMentorCosts totals approved mentor session costs.
type DashboardMentorCosts struct {
	TotalCost     float64 `json:"totalCost"`
	AssignedCount int     `json:"assignedCount"`
}

// DashboardLeaderboards highlights the busiest courses and departments.
type DashboardLeaderboards struct {
	CoursesByEnrollment []CourseEnrollmentCount `json:"coursesByEnrollment"`
	Departments         []DepartmentCount       `json:"departments"`
}

// CourseEnrollmentCount ranks a course by approved headcount.
type CourseEnrollmentCount struct {
	CourseID  string `json:"courseId"`
	Name      string `json:"name"`
	BatchCode string `json:"batchCode"`
	Enrolled  int    `json:"enrolled"`
}

// DepartmentCount counts active learners per department.
type DepartmentCount struct {
	Department string `json:"department"`
	Students   int    `json:"students"`
}
