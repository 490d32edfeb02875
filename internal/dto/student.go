package dto

// CreateStudentRequest captures POST /students payload.
type CreateStudentRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	FullName   string `json:"fullName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required"`
	Grade      string `json:"grade"`
}

// UpdateStudentRequest captures PUT /students/:id payload.
type UpdateStudentRequest struct {
	FullName   *string `json:"fullName"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Grade      *string `json:"grade"`
	Active     *bool   `json:"active"`
}
