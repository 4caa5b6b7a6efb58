package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

type studentServiceImpl struct {
	repos  *repository.Repositories
	logger logger.Logger
}

func newStudentService(deps Dependencies) StudentService {
	return &studentServiceImpl{repos: deps.Repos, logger: deps.Logger}
}

// Create registers a student together with initial marks
func (s *studentServiceImpl) Create(ctx context.Context, draft *models.StudentDraft) (*models.Student, error) {
	if hasDuplicateMark(draft.Subjects) {
		return nil, errors.ValidationError("duplicate subject", nil).WithOperation("CreateStudent")
	}
	if hasDuplicateMark(draft.Factors) {
		return nil, errors.ValidationError("duplicate factor", nil).WithOperation("CreateStudent")
	}

	exists, err := s.repos.Student.EmailExists(ctx, draft.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Conflict("current user already exists", nil).WithOperation("CreateStudent")
	}

	hash, err := auth.HashPassword(draft.Password)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err).WithOperation("CreateStudent")
	}

	student := &models.Student{
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Email:        draft.Email,
		PasswordHash: hash,
		Course:       draft.Course,
		Group:        draft.Group,
	}

	err = s.repos.Tx.WithTransaction(ctx, func(tx *repository.Repositories) error {
		return tx.Student.Create(ctx, student, draft.Subjects, draft.Factors)
	})
	if err != nil {
		if isEmailConflict(err) {
			return nil, errors.Conflict("current user already exists", err).WithOperation("CreateStudent")
		}
		return nil, err
	}

	s.logger.Info("student created",
		"student_id", student.ID.String(),
		"subjects", len(draft.Subjects),
		"factors", len(draft.Factors),
	)
	return student, nil
}

// List returns student summaries; NotFound when there are none
func (s *studentServiceImpl) List(ctx context.Context, group string) ([]models.StudentSummary, error) {
	students, err := s.repos.Student.FindSummaries(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, errors.NotFound("no students found", nil).WithOperation("ListStudents")
	}
	return students, nil
}

// Get returns a student's detail without email and secrets
func (s *studentServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := student.Public()
	return &public, nil
}

// Profile returns the signed-in student's own record, email included
func (s *studentServiceImpl) Profile(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := student.Public()
	profile.Email = student.Email
	return &profile, nil
}

func hasDuplicateMark(marks []models.MarkInput) bool {
	seen := make(map[uuid.UUID]struct{}, len(marks))
	for _, m := range marks {
		if _, dup := seen[m.ID]; dup {
			return true
		}
		seen[m.ID] = struct{}{}
	}
	return false
}

// isEmailConflict reports a race lost against another insert of the same email
func isEmailConflict(err error) bool {
	appErr, ok := errors.As(err)
	return ok && appErr.Code == errors.ErrCodeConflict && appErr.Details == repository.StudentEmailConstraint
}
