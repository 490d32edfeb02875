package service

import (
	"strings"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
)

// OnsiteBuckets partitions a course's locally administered enrollments for
// display. Buckets are disjoint; a record lands in Unclassified when it
// satisfies no predicate (for example a missing approval status) instead
// of vanishing silently.
type OnsiteBuckets struct {
	Approved        []models.Enrollment `json:"approved"`
	EligiblePending []models.Enrollment `json:"eligible_pending"`
	NotEligible     []models.Enrollment `json:"not_eligible"`
	Rejected        []models.Enrollment `json:"rejected"`
	Withdrawn       []models.Enrollment `json:"withdrawn"`
	Unclassified    []models.Enrollment `json:"unclassified,omitempty"`
}

// OnlineBuckets partitions LMS-synced enrollments by progress.
type OnlineBuckets struct {
	Completed  []models.Enrollment `json:"completed"`
	InProgress []models.Enrollment `json:"in_progress"`
	NotStarted []models.Enrollment `json:"not_started"`
}

// ClassifyOnsite buckets non-LMS enrollments by approval and eligibility.
// LMS-synced records are skipped entirely; they belong to ClassifyOnline.
// The function never fails: malformed records fall into Unclassified.
func ClassifyOnsite(enrollments []models.Enrollment) OnsiteBuckets {
	var buckets OnsiteBuckets
	for _, e := range enrollments {
		if e.IsLMSEnrollment {
			continue
		}
		approval := e.ApprovalStatus.String()
		switch approval {
		case models.ApprovalApproved:
			buckets.Approved = append(buckets.Approved, e)
			continue
		case models.ApprovalRejected:
			buckets.Rejected = append(buckets.Rejected, e)
			continue
		case models.ApprovalWithdrawn:
			buckets.Withdrawn = append(buckets.Withdrawn, e)
			continue
		}
		if approval == models.ApprovalPending && e.EligibilityStatus.Equals(models.EligibilityEligible) {
			buckets.EligiblePending = append(buckets.EligiblePending, e)
			continue
		}
		if strings.HasPrefix(e.EligibilityStatus.String(), "Ineligible") {
			buckets.NotEligible = append(buckets.NotEligible, e)
			continue
		}
		buckets.Unclassified = append(buckets.Unclassified, e)
	}
	return buckets
}

// ClassifyOnline buckets LMS-synced enrollments by progress percentage and
// completion status. Non-LMS records are skipped. Records matching no
// predicate are dropped; the LMS feed owns their consistency.
func ClassifyOnline(enrollments []models.Enrollment) OnlineBuckets {
	var buckets OnlineBuckets
	for _, e := range enrollments {
		if !e.IsLMSEnrollment {
			continue
		}
		progress := 0.0
		if e.Progress != nil {
			progress = *e.Progress
		}
		completed := progress >= 100 || e.CompletionStatus.Equals(models.CompletionCompleted)
		inProgress := progress > 0 && progress < 100 && e.CompletionStatus.Equals(models.CompletionInProgress)

		switch {
		case completed:
			buckets.Completed = append(buckets.Completed, e)
		case inProgress:
			buckets.InProgress = append(buckets.InProgress, e)
		case progress == 0 || e.CompletionStatus.Equals(models.CompletionNotStarted):
			buckets.NotStarted = append(buckets.NotStarted, e)
		}
	}
	return buckets
}
