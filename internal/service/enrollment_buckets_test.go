package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

func onsiteEnrollment(id, approval, eligibility string) models.Enrollment {
	return models.Enrollment{
		ID:                id,
		ApprovalStatus:    models.StatusValue(approval),
		EligibilityStatus: models.StatusValue(eligibility),
	}
}

func lmsEnrollment(id string, progress float64, completion string) models.Enrollment {
	return models.Enrollment{
		ID:               id,
		IsLMSEnrollment:  true,
		Progress:         &progress,
		CompletionStatus: models.StatusValue(completion),
	}
}

func TestClassifyOnsitePartitions(t *testing.T) {
	input := []models.Enrollment{
		onsiteEnrollment("e1", models.ApprovalApproved, models.EligibilityEligible),
		onsiteEnrollment("e2", models.ApprovalPending, models.EligibilityEligible),
		onsiteEnrollment("e3", models.ApprovalPending, models.EligibilityMissingPrerequisite),
		onsiteEnrollment("e4", models.ApprovalRejected, models.EligibilityEligible),
		onsiteEnrollment("e5", models.ApprovalWithdrawn, models.EligibilityAlreadyTaken),
		onsiteEnrollment("e6", "", models.EligibilityAnnualLimit),
	}

	buckets := ClassifyOnsite(input)
	assert.Len(t, buckets.Approved, 1)
	assert.Len(t, buckets.EligiblePending, 1)
	assert.Len(t, buckets.NotEligible, 2, "pending-ineligible and approval-less ineligible")
	assert.Len(t, buckets.Rejected, 1)
	assert.Len(t, buckets.Withdrawn, 1)
	assert.Empty(t, buckets.Unclassified)

	total := len(buckets.Approved) + len(buckets.EligiblePending) + len(buckets.NotEligible) +
		len(buckets.Rejected) + len(buckets.Withdrawn) + len(buckets.Unclassified)
	assert.Equal(t, len(input), total, "well-formed input partitions completely")
}

func TestClassifyOnsiteDisjoint(t *testing.T) {
	input := []models.Enrollment{
		onsiteEnrollment("a", models.ApprovalApproved, models.EligibilityMissingPrerequisite),
		onsiteEnrollment("b", models.ApprovalWithdrawn, models.EligibilityAnnualLimit),
	}
	buckets := ClassifyOnsite(input)

	seen := map[string]int{}
	for _, group := range [][]models.Enrollment{
		buckets.Approved, buckets.EligiblePending, buckets.NotEligible,
		buckets.Rejected, buckets.Withdrawn, buckets.Unclassified,
	} {
		for _, e := range group {
			seen[e.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "enrollment %s appears in exactly one bucket", id)
	}
	// Approval wins over an ineligible flag.
	assert.Equal(t, "a", buckets.Approved[0].ID)
	assert.Equal(t, "b", buckets.Withdrawn[0].ID)
}

func TestClassifyOnsiteSkipsLMSRecords(t *testing.T) {
	buckets := ClassifyOnsite([]models.Enrollment{lmsEnrollment("lms", 50, models.CompletionInProgress)})
	assert.Empty(t, buckets.Approved)
	assert.Empty(t, buckets.Unclassified, "LMS records belong to the online classifier, not the gap bucket")
}

func TestClassifyOnsiteUnclassifiedGap(t *testing.T) {
	// No approval status and no eligibility signal matches no predicate.
	buckets := ClassifyOnsite([]models.Enrollment{onsiteEnrollment("gap", "", "")})
	assert.Len(t, buckets.Unclassified, 1)
}

func TestClassifyOnsiteWrappedStatusShape(t *testing.T) {
	var plain, wrapped models.Enrollment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","approval_status":"Approved"}`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","approval_status":{"value":"Approved"}}`), &wrapped))

	fromPlain := ClassifyOnsite([]models.Enrollment{plain})
	fromWrapped := ClassifyOnsite([]models.Enrollment{wrapped})
	require.Len(t, fromPlain.Approved, 1)
	require.Len(t, fromWrapped.Approved, 1)
	assert.Equal(t, "p1", fromPlain.Approved[0].ID)
	assert.Equal(t, "w1", fromWrapped.Approved[0].ID)
}

func TestClassifyOnline(t *testing.T) {
	input := []models.Enrollment{
		lmsEnrollment("done", 100, models.CompletionInProgress),
		lmsEnrollment("done-by-status", 80, models.CompletionCompleted),
		lmsEnrollment("running", 35, models.CompletionInProgress),
		lmsEnrollment("fresh", 0, models.CompletionNotStarted),
		onsiteEnrollment("local", models.ApprovalApproved, models.EligibilityEligible),
	}

	buckets := ClassifyOnline(input)
	assert.Len(t, buckets.Completed, 2, "progress >= 100 or completed status")
	assert.Len(t, buckets.InProgress, 1)
	assert.Len(t, buckets.NotStarted, 1)
}

func TestClassifyOnlineMissingProgress(t *testing.T) {
	noProgress := models.Enrollment{ID: "np", IsLMSEnrollment: true, CompletionStatus: models.StatusValue(models.CompletionNotStarted)}
	buckets := ClassifyOnline([]models.Enrollment{noProgress})
	assert.Len(t, buckets.NotStarted, 1)
}

func TestClassifyOnlineDropsContradictoryRecord(t *testing.T) {
	// Mid progress without a matching in-progress status falls through the
	// in-progress predicate but is caught by neither completed nor
	// not-started: the record is dropped.
	odd := lmsEnrollment("odd", 50, models.CompletionFailed)
	buckets := ClassifyOnline([]models.Enrollment{odd})
	assert.Empty(t, buckets.Completed)
	assert.Empty(t, buckets.InProgress)
	assert.Empty(t, buckets.NotStarted)
}
