package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/models"
)

// secretaryRepository implements SecretaryRepository
type secretaryRepository struct {
	db dbExecutor
}

// NewSecretaryRepository creates a new secretary repository
func NewSecretaryRepository(db dbExecutor) SecretaryRepository {
	return &secretaryRepository{db: db}
}

// FindByEmail retrieves a secretary by email
func (r *secretaryRepository) FindByEmail(ctx context.Context, email string) (*models.Secretary, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, created_at, updated_at
		FROM secretaries WHERE email = $1
	`

	s := &models.Secretary{}
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.PasswordHash,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "SecretaryRepository.FindByEmail", "secretary not found")
	}

	return s, nil
}

// Create creates a new secretary
func (r *secretaryRepository) Create(ctx context.Context, s *models.Secretary) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Email = strings.ToLower(s.Email)

	query := `
		INSERT INTO secretaries (id, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.FirstName, s.LastName, s.Email, s.PasswordHash,
		s.CreatedAt, s.UpdatedAt,
	)
	return translate(err, "SecretaryRepository.Create", "")
}
