package service

import "github.com/LnD-Brainstaiton/ld-training-api/internal/models"

// CompletionStats summarises how many relevant enrollments finished.
type CompletionStats struct {
	Rate      float64 `json:"rate"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
}

// AggregateCompletion computes the completion rate for one course-type
// bucket. For onsite courses the denominator counts enrollments that
// reached an outcome: approved ones that completed or failed, plus
// withdrawn ones (a withdrawn seat was consumed and not completed).
// Rejected enrollments never started and are excluded. For online courses
// every LMS enrollment counts.
func AggregateCompletion(enrollments []models.Enrollment, courseType models.CourseType) CompletionStats {
	var stats CompletionStats
	for _, e := range enrollments {
		if courseType == models.CourseTypeOnline {
			if !e.IsLMSEnrollment {
				continue
			}
			stats.Total++
			if e.CompletionStatus.Equals(models.CompletionCompleted) {
				stats.Completed++
			}
			continue
		}

		if e.IsLMSEnrollment || e.ApprovalStatus.Equals(models.ApprovalRejected) {
			continue
		}
		withdrawn := e.ApprovalStatus.Equals(models.ApprovalWithdrawn)
		finished := e.ApprovalStatus.Equals(models.ApprovalApproved) &&
			(e.CompletionStatus.Equals(models.CompletionCompleted) || e.CompletionStatus.Equals(models.CompletionFailed))
		if !withdrawn && !finished {
			continue
		}
		stats.Total++
		if e.CompletionStatus.Equals(models.CompletionCompleted) {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.Rate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}
