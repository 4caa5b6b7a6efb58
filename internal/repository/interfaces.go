package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/models"
)

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	// FindAll returns every student with subject and factor marks resolved,
	// ordered by creation time then id.
	FindAll(ctx context.Context) ([]models.Student, error)
	FindSummaries(ctx context.Context, group string) ([]models.StudentSummary, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student, subjects, factors []models.MarkInput) error

	// Password reset
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	FindByResetToken(ctx context.Context, token string) (*models.Student, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// SecretaryRepository defines the interface for secretary account access
type SecretaryRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Secretary, error)
	Create(ctx context.Context, secretary *models.Secretary) error
}

// SubjectRepository defines the interface for subject data access
type SubjectRepository interface {
	FindAll(ctx context.Context) ([]models.Subject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
}

// FactorRepository defines the interface for factor data access
type FactorRepository interface {
	FindAll(ctx context.Context) ([]models.Factor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Factor, error)
	Create(ctx context.Context, factor *models.Factor) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
}

// ProfessionRepository defines the interface for profession data access
type ProfessionRepository interface {
	// FindAll returns professions with their subjects resolved
	FindAll(ctx context.Context) ([]models.Profession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profession, error)
	Create(ctx context.Context, profession *models.Profession) error
}

// SpecialityRepository defines the interface for speciality data access
type SpecialityRepository interface {
	FindAll(ctx context.Context) ([]models.Speciality, error)
	Upsert(ctx context.Context, speciality *models.Speciality) error
}

// TransactionManager defines the interface for database transaction management
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Student    StudentRepository
	Secretary  SecretaryRepository
	Subject    SubjectRepository
	Factor     FactorRepository
	Profession ProfessionRepository
	Speciality SpecialityRepository
	Tx         TransactionManager
}
