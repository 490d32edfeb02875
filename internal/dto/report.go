package dto

import "github.com/LnD-Brainstaiton/ld-training-api/internal/models"

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type     models.ReportType   `json:"type"`
	CourseID *string             `json:"courseId,omitempty"`
	Period   string              `json:"period"`
	Month    string              `json:"month,omitempty"`
	Quarter  string              `json:"quarter,omitempty"`
	Year     int                 `json:"year,omitempty"`
	Format   models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
