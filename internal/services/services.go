package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/mailer"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
	"github.com/ajharbinger/profmatch-api/internal/scoring"
	"github.com/ajharbinger/profmatch-api/pkg/config"
)

// Services contains all application services
type Services struct {
	Auth     AuthService
	Students StudentService
	Catalog  CatalogService
	Matching MatchingService
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// StudentService defines the interface for student management
type StudentService interface {
	Create(ctx context.Context, draft *models.StudentDraft) (*models.Student, error)
	List(ctx context.Context, group string) ([]models.StudentSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Student, error)
	Profile(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

// InitialTable is the reference data the search screen starts from
type InitialTable struct {
	Subjects     []models.Subject    `json:"subjects"`
	Factors      []models.Factor     `json:"factors"`
	Variants     []models.Profession `json:"variants"`
	Specialities []models.Speciality `json:"specialities"`
}

// CatalogService defines the interface for subjects, factors and professions
type CatalogService interface {
	InitialTable(ctx context.Context) (*InitialTable, error)
	Specialities(ctx context.Context) ([]models.Speciality, error)
	RenameSubject(ctx context.Context, id uuid.UUID, name string) error
	RenameSubjects(ctx context.Context, names map[uuid.UUID]string) error
	RenameFactor(ctx context.Context, id uuid.UUID, name string) error
}

// MatchingService ranks students against a requested subject set
type MatchingService interface {
	ComputeRanking(ctx context.Context, subjectNames []string) ([]scoring.ScoreResult, error)
	ComputeRankingForProfession(ctx context.Context, professionID uuid.UUID) ([]scoring.ScoreResult, error)
}

// Dependencies are the collaborators the services are built from
type Dependencies struct {
	Repos  *repository.Repositories
	Keys   *auth.Keyring
	Mailer mailer.Mailer
	Logger logger.Logger
	Config *config.Config
	Clock  func() time.Time
}

// NewServices creates a new Services instance with all dependencies
func NewServices(deps Dependencies) *Services {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	return &Services{
		Auth:     newAuthService(deps),
		Students: newStudentService(deps),
		Catalog:  newCatalogService(deps),
		Matching: newMatchingService(deps),
	}
}
