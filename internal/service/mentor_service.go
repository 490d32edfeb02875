package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/models"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
)

type mentorRepository interface {
	ListMentors(ctx context.Context) ([]models.Mentor, error)
	FindMentorByID(ctx context.Context, id string) (*models.Mentor, error)
	CreateMentor(ctx context.Context, mentor *models.Mentor) error
	ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error)
	FindAssignmentByID(ctx context.Context, id string) (*models.MentorAssignment, error)
	FindByCourseAndState(ctx context.Context, courseID string, state models.AssignmentState) (*models.MentorAssignment, error)
	CreateAssignment(ctx context.Context, assignment *models.MentorAssignment) error
	UpdateAssignment(ctx context.Context, assignment *models.MentorAssignment) error
}

type mentorCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// MentorService handles trainers and the draft/approved assignment workflow.
type MentorService struct {
	repo      mentorRepository
	courses   mentorCourseReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMentorService constructs the mentor service.
func NewMentorService(repo mentorRepository, courses mentorCourseReader, validate *validator.Validate, logger *zap.Logger) *MentorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{repo: repo, courses: courses, validator: validate, logger: logger, now: time.Now}
}

// ListMentors returns every registered mentor.
func (s *MentorService) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	mentors, err := s.repo.ListMentors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}
	return mentors, nil
}

// CreateMentor registers a new mentor.
func (s *MentorService) CreateMentor(ctx context.Context, req dto.CreateMentorRequest) (*models.Mentor, error) {
	mentor := &models.Mentor{
		FullName:  req.FullName,
		Email:     req.Email,
		Expertise: req.Expertise,
		External:  req.External,
		Active:    true,
	}
	if err := s.repo.CreateMentor(ctx, mentor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentor")
	}
	return mentor, nil
}

// ListAssignments returns assignments, optionally scoped to one course.
func (s *MentorService) ListAssignments(ctx context.Context, courseID string) ([]models.MentorAssignmentDetail, error) {
	assignments, err := s.repo.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Draft proposes a mentor for a course. Only one draft per course exists at
// a time; a second proposal must revise the first.
func (s *MentorService) Draft(ctx context.Context, req dto.CreateAssignmentRequest) (*models.MentorAssignment, error) {
	if req.SessionCost < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session cost must not be negative")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	mentor, err := s.repo.FindMentorByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	if !mentor.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "mentor is inactive")
	}

	existing, err := s.repo.FindByCourseAndState(ctx, req.CourseID, models.AssignmentStateDraft)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing draft")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already has a draft assignment")
	}

	assignment := &models.MentorAssignment{
		CourseID:    req.CourseID,
		MentorID:    req.MentorID,
		SessionCost: req.SessionCost,
		State:       models.AssignmentStateDraft,
	}
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Revise updates a draft assignment before approval.
func (s *MentorService) Revise(ctx context.Context, id string, req dto.UpdateAssignmentRequest) (*models.MentorAssignment, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.State != models.AssignmentStateDraft {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only draft assignments can be revised")
	}
	if req.MentorID != nil {
		mentor, err := s.repo.FindMentorByID(ctx, *req.MentorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
		}
		if !mentor.Active {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "mentor is inactive")
		}
		assignment.MentorID = *req.MentorID
	}
	if req.SessionCost != nil {
		if *req.SessionCost < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "session cost must not be negative")
		}
		assignment.SessionCost = *req.SessionCost
	}
	if err := s.repo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// Approve promotes a draft to the approved assignment for its course. Any
// previously approved assignment on that course is archived so the cost
// history stays intact.
func (s *MentorService) Approve(ctx context.Context, id, approverID string) (*models.MentorAssignment, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.State != models.AssignmentStateDraft {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only draft assignments can be approved")
	}

	current, err := s.repo.FindByCourseAndState(ctx, assignment.CourseID, models.AssignmentStateApproved)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved assignment")
	}
	if current != nil {
		current.State = models.AssignmentStateArchived
		if err := s.repo.UpdateAssignment(ctx, current); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive previous assignment")
		}
	}

	now := s.now().UTC()
	assignment.State = models.AssignmentStateApproved
	assignment.ApprovedBy = &approverID
	assignment.ApprovedAt = &now
	if err := s.repo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve assignment")
	}
	return assignment, nil
}

// Discrepancy compares the course's draft against its approved assignment.
// It returns nil when the course has no draft or no approved row to compare.
func (s *MentorService) Discrepancy(ctx context.Context, courseID string) (*models.AssignmentDiscrepancy, error) {
	draft, err := s.repo.FindByCourseAndState(ctx, courseID, models.AssignmentStateDraft)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft assignment")
	}
	approved, err := s.repo.FindByCourseAndState(ctx, courseID, models.AssignmentStateApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved assignment")
	}

	return &models.AssignmentDiscrepancy{
		CourseID:         courseID,
		ApprovedMentorID: approved.MentorID,
		DraftMentorID:    draft.MentorID,
		MentorChanged:    approved.MentorID != draft.MentorID,
		ApprovedCost:     approved.SessionCost,
		DraftCost:        draft.SessionCost,
		CostDelta:        draft.SessionCost - approved.SessionCost,
	}, nil
}

func (s *MentorService) loadAssignment(ctx context.Context, id string) (*models.MentorAssignment, error) {
	assignment, err := s.repo.FindAssignmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}
