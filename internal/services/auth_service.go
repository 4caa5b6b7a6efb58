package services

import (
	"context"
	"time"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/mailer"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

const (
	defaultResetTTL = time.Hour
	defaultResetURL = "http://localhost:3700/confirm"
)

// authServiceImpl implements AuthService
type authServiceImpl struct {
	repos    *repository.Repositories
	keys     *auth.Keyring
	mailer   mailer.Mailer
	logger   logger.Logger
	now      func() time.Time
	resetTTL time.Duration
	resetURL string
}

// newAuthService creates a new auth service implementation
func newAuthService(deps Dependencies) AuthService {
	s := &authServiceImpl{
		repos:    deps.Repos,
		keys:     deps.Keys,
		mailer:   deps.Mailer,
		logger:   deps.Logger,
		now:      deps.Clock,
		resetTTL: defaultResetTTL,
		resetURL: defaultResetURL,
	}
	if deps.Config != nil {
		if deps.Config.ResetTokenTTL > 0 {
			s.resetTTL = deps.Config.ResetTokenTTL
		}
		if deps.Config.ResetURLBase != "" {
			s.resetURL = deps.Config.ResetURLBase
		}
	}
	if s.mailer == nil {
		s.mailer = mailer.NewLogMailer(s.logger, false)
	}
	return s
}

// findAccount looks up secretaries first, then students
func (s *authServiceImpl) findAccount(ctx context.Context, email string) (*models.Account, error) {
	secretary, err := s.repos.Secretary.FindByEmail(ctx, email)
	if err == nil {
		return &models.Account{
			ID:           secretary.ID,
			Email:        secretary.Email,
			PasswordHash: secretary.PasswordHash,
			Role:         models.RoleSecretary,
		}, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	student, err := s.repos.Student.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("user not found", err).WithOperation("Login")
		}
		return nil, err
	}
	return &models.Account{
		ID:           student.ID,
		Email:        student.Email,
		PasswordHash: student.PasswordHash,
		Role:         models.RoleStudent,
	}, nil
}

// Login authenticates a user and returns a role-scoped token
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	account, err := s.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(password, account.PasswordHash) {
		return nil, errors.NotFound("passwords do not match", nil).WithOperation("Login")
	}

	token, _, err := s.keys.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, errors.InternalError("failed to generate token", err).WithOperation("Login")
	}

	s.logger.Info("user signed in", "user_id", account.ID.String(), "role", string(account.Role))

	return &models.LoginResponse{
		Token:  token,
		UserID: account.ID.String(),
		Role:   account.Role,
	}, nil
}

// ForgotPassword stores a reset token for the student and emails it.
// Delivery failures are logged; the caller still sees success.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	student, err := s.repos.Student.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("no user with this email exists", err).WithOperation("ForgotPassword")
		}
		return err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return errors.InternalError("failed to generate reset token", err).WithOperation("ForgotPassword")
	}

	expires := s.now().Add(s.resetTTL)
	if err := s.repos.Student.SetResetToken(ctx, student.ID, token, expires); err != nil {
		return err
	}

	msg, err := mailer.RenderResetEmail(student.Email, s.resetURL, token, s.resetTTL.String())
	if err != nil {
		s.logger.Error("failed to render reset email", err, "student_id", student.ID.String())
		return nil
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send reset email", err, "student_id", student.ID.String())
		return nil
	}

	s.logger.Info("password reset requested", "student_id", student.ID.String(), "expires_at", expires)
	return nil
}

// ResetPassword sets a new password for the owner of a valid reset token
func (s *authServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	student, err := s.repos.Student.FindByResetToken(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound("reset token not found", err).WithOperation("ResetPassword")
		}
		return err
	}

	if !student.ResetValid(s.now()) {
		return errors.ValidationError("reset token has expired", nil).WithOperation("ResetPassword")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.InternalError("failed to hash password", err).WithOperation("ResetPassword")
	}

	return s.repos.Student.UpdatePassword(ctx, student.ID, hash)
}
