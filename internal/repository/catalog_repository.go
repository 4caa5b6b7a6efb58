package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/models"
)

// subjectRepository implements SubjectRepository
type subjectRepository struct {
	db dbExecutor
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db dbExecutor) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) FindAll(ctx context.Context) ([]models.Subject, error) {
	const op = "SubjectRepository.FindAll"

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM subjects ORDER BY name, id`)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, translate(err, op, "")
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return subjects, nil
}

func (r *subjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	s := &models.Subject{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM subjects WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, translate(err, "SubjectRepository.FindByID", "subject not found")
	}
	return s, nil
}

func (r *subjectRepository) Create(ctx context.Context, s *models.Subject) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO subjects (id, name) VALUES ($1, $2)`, s.ID, s.Name)
	return translate(err, "SubjectRepository.Create", "")
}

// UpdateName renames a subject; NotFound when the id does not exist
func (r *subjectRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	const op = "SubjectRepository.UpdateName"

	result, err := r.db.ExecContext(ctx,
		`UPDATE subjects SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return translate(err, op, "")
	}
	return requireAffected(result, op, "subject not found")
}

// factorRepository implements FactorRepository
type factorRepository struct {
	db dbExecutor
}

// NewFactorRepository creates a new factor repository
func NewFactorRepository(db dbExecutor) FactorRepository {
	return &factorRepository{db: db}
}

func (r *factorRepository) FindAll(ctx context.Context) ([]models.Factor, error) {
	const op = "FactorRepository.FindAll"

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM factors ORDER BY name, id`)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	factors := []models.Factor{}
	for rows.Next() {
		var f models.Factor
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, translate(err, op, "")
		}
		factors = append(factors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return factors, nil
}

func (r *factorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Factor, error) {
	f := &models.Factor{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM factors WHERE id = $1`, id).Scan(&f.ID, &f.Name)
	if err != nil {
		return nil, translate(err, "FactorRepository.FindByID", "factor not found")
	}
	return f, nil
}

func (r *factorRepository) Create(ctx context.Context, f *models.Factor) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO factors (id, name) VALUES ($1, $2)`, f.ID, f.Name)
	return translate(err, "FactorRepository.Create", "")
}

func (r *factorRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	const op = "FactorRepository.UpdateName"

	result, err := r.db.ExecContext(ctx,
		`UPDATE factors SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return translate(err, op, "")
	}
	return requireAffected(result, op, "factor not found")
}

// professionRepository implements ProfessionRepository
type professionRepository struct {
	db dbExecutor
}

// NewProfessionRepository creates a new profession repository
func NewProfessionRepository(db dbExecutor) ProfessionRepository {
	return &professionRepository{db: db}
}

// FindAll retrieves professions with their subjects in a single join
func (r *professionRepository) FindAll(ctx context.Context) ([]models.Profession, error) {
	const op = "ProfessionRepository.FindAll"

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, sub.id, sub.name
		FROM professions p
		LEFT JOIN profession_subjects ps ON ps.profession_id = p.id
		LEFT JOIN subjects sub ON sub.id = ps.subject_id
		ORDER BY p.name, p.id, sub.name`)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	professions := []models.Profession{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			p           models.Profession
			subjectID   uuid.NullUUID
			subjectName *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &subjectID, &subjectName); err != nil {
			return nil, translate(err, op, "")
		}
		i, ok := index[p.ID]
		if !ok {
			p.Subjects = []models.Subject{}
			index[p.ID] = len(professions)
			professions = append(professions, p)
			i = len(professions) - 1
		}
		if subjectID.Valid && subjectName != nil {
			professions[i].Subjects = append(professions[i].Subjects, models.Subject{
				ID:   subjectID.UUID,
				Name: *subjectName,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return professions, nil
}

func (r *professionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profession, error) {
	const op = "ProfessionRepository.FindByID"

	p := &models.Profession{Subjects: []models.Subject{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM professions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return nil, translate(err, op, "profession not found")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT sub.id, sub.name
		FROM profession_subjects ps
		JOIN subjects sub ON sub.id = ps.subject_id
		WHERE ps.profession_id = $1
		ORDER BY sub.name`, id)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, translate(err, op, "")
		}
		p.Subjects = append(p.Subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return p, nil
}

// Create inserts a profession and links its subjects by id
func (r *professionRepository) Create(ctx context.Context, p *models.Profession) error {
	const op = "ProfessionRepository.Create"

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO professions (id, name, description) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.Description,
	)
	if err != nil {
		return translate(err, op, "")
	}
	for _, s := range p.Subjects {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO profession_subjects (profession_id, subject_id) VALUES ($1, $2)`,
			p.ID, s.ID,
		)
		if err != nil {
			return translate(err, op, "")
		}
	}
	return nil
}

// specialityRepository implements SpecialityRepository
type specialityRepository struct {
	db dbExecutor
}

// NewSpecialityRepository creates a new speciality repository
func NewSpecialityRepository(db dbExecutor) SpecialityRepository {
	return &specialityRepository{db: db}
}

func (r *specialityRepository) FindAll(ctx context.Context) ([]models.Speciality, error) {
	const op = "SpecialityRepository.FindAll"

	rows, err := r.db.QueryContext(ctx, `SELECT id, grp, faculty FROM specialities ORDER BY faculty, grp`)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	specialities := []models.Speciality{}
	for rows.Next() {
		var s models.Speciality
		if err := rows.Scan(&s.ID, &s.Group, &s.Faculty); err != nil {
			return nil, translate(err, op, "")
		}
		specialities = append(specialities, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return specialities, nil
}

// Upsert inserts a speciality or updates the faculty of an existing group
func (r *specialityRepository) Upsert(ctx context.Context, s *models.Speciality) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO specialities (id, grp, faculty) VALUES ($1, $2, $3)
		ON CONFLICT (grp) DO UPDATE SET faculty = EXCLUDED.faculty
		RETURNING id`,
		s.ID, s.Group, s.Faculty,
	).Scan(&s.ID)
	return translate(err, "SpecialityRepository.Upsert", "")
}
