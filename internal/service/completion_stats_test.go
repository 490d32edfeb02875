package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

func withCompletion(e models.Enrollment, completion string) models.Enrollment {
	e.CompletionStatus = models.StatusValue(completion)
	return e
}

func TestAggregateCompletionOnsite(t *testing.T) {
	input := []models.Enrollment{
		withCompletion(onsiteEnrollment("a", models.ApprovalApproved, models.EligibilityEligible), models.CompletionCompleted),
		withCompletion(onsiteEnrollment("b", models.ApprovalApproved, models.EligibilityEligible), models.CompletionFailed),
		withCompletion(onsiteEnrollment("c", models.ApprovalApproved, models.EligibilityEligible), models.CompletionInProgress),
		withCompletion(onsiteEnrollment("d", models.ApprovalWithdrawn, models.EligibilityEligible), models.CompletionNotStarted),
	}

	stats := AggregateCompletion(input, models.CourseTypeOnsite)
	assert.Equal(t, 3, stats.Total, "in-progress enrollment has no outcome yet")
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 33.33, stats.Rate, 0.01)
}

func TestAggregateCompletionExcludesRejected(t *testing.T) {
	input := []models.Enrollment{
		withCompletion(onsiteEnrollment("a", models.ApprovalApproved, models.EligibilityEligible), models.CompletionCompleted),
		withCompletion(onsiteEnrollment("r", models.ApprovalRejected, models.EligibilityEligible), models.CompletionCompleted),
	}
	stats := AggregateCompletion(input, models.CourseTypeOnsite)
	assert.Equal(t, 1, stats.Total, "rejected enrollments never began")
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 100, stats.Rate, 0.001)
}

func TestAggregateCompletionOnline(t *testing.T) {
	input := []models.Enrollment{
		lmsEnrollment("a", 100, models.CompletionCompleted),
		lmsEnrollment("b", 40, models.CompletionInProgress),
		lmsEnrollment("c", 0, models.CompletionNotStarted),
		withCompletion(onsiteEnrollment("local", models.ApprovalApproved, models.EligibilityEligible), models.CompletionCompleted),
	}
	stats := AggregateCompletion(input, models.CourseTypeOnline)
	assert.Equal(t, 3, stats.Total, "every LMS enrollment counts, local ones do not")
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 33.33, stats.Rate, 0.01)
}

func TestAggregateCompletionEmptyInput(t *testing.T) {
	stats := AggregateCompletion(nil, models.CourseTypeOnsite)
	assert.Equal(t, CompletionStats{}, stats)

	stats = AggregateCompletion([]models.Enrollment{}, models.CourseTypeOnline)
	assert.Zero(t, stats.Rate)
	assert.Zero(t, stats.Total)
}
