package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/models"
)

const studentColumns = `
	s.id, s.first_name, s.last_name, s.email, s.password_hash, s.course, s.grp,
	s.reset_token, s.reset_expires, s.created_at, s.updated_at`

// studentRepository implements StudentRepository
type studentRepository struct {
	db dbExecutor
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db dbExecutor) StudentRepository {
	return &studentRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var (
		st           models.Student
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	err := row.Scan(
		&st.ID, &st.FirstName, &st.LastName, &st.Email, &st.PasswordHash, &st.Course, &st.Group,
		&resetToken, &resetExpires, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.ResetToken = resetToken.String
	if resetExpires.Valid {
		t := resetExpires.Time
		st.ResetExpires = &t
	}
	st.Subjects = []models.SubjectMark{}
	st.Factors = []models.FactorMark{}
	return &st, nil
}

// FindAll retrieves every student with resolved marks in population order
func (r *studentRepository) FindAll(ctx context.Context) ([]models.Student, error) {
	const op = "StudentRepository.FindAll"

	rows, err := r.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students s ORDER BY s.created_at, s.id`)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	students := []models.Student{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, translate(err, op, "")
		}
		index[st.ID] = len(students)
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	if len(students) == 0 {
		return students, nil
	}

	err = r.loadSubjectMarks(ctx, nil, func(id uuid.UUID, m models.SubjectMark) {
		if i, ok := index[id]; ok {
			students[i].Subjects = append(students[i].Subjects, m)
		}
	})
	if err != nil {
		return nil, err
	}

	err = r.loadFactorMarks(ctx, nil, func(id uuid.UUID, m models.FactorMark) {
		if i, ok := index[id]; ok {
			students[i].Factors = append(students[i].Factors, m)
		}
	})
	if err != nil {
		return nil, err
	}

	return students, nil
}

// loadSubjectMarks streams subject marks joined to subject names.
// A nil studentID loads marks for all students.
func (r *studentRepository) loadSubjectMarks(ctx context.Context, studentID *uuid.UUID, add func(uuid.UUID, models.SubjectMark)) error {
	const op = "StudentRepository.loadSubjectMarks"

	query := `
		SELECT ss.student_id, sub.id, sub.name, ss.mark
		FROM student_subjects ss
		JOIN subjects sub ON sub.id = ss.subject_id`
	var args []interface{}
	if studentID != nil {
		query += ` WHERE ss.student_id = $1`
		args = append(args, *studentID)
	}
	query += ` ORDER BY sub.name, sub.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return translate(err, op, "")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner uuid.UUID
			m     models.SubjectMark
		)
		if err := rows.Scan(&owner, &m.Subject.ID, &m.Subject.Name, &m.Mark); err != nil {
			return translate(err, op, "")
		}
		add(owner, m)
	}
	return translate(rows.Err(), op, "")
}

func (r *studentRepository) loadFactorMarks(ctx context.Context, studentID *uuid.UUID, add func(uuid.UUID, models.FactorMark)) error {
	const op = "StudentRepository.loadFactorMarks"

	query := `
		SELECT sf.student_id, f.id, f.name, sf.mark
		FROM student_factors sf
		JOIN factors f ON f.id = sf.factor_id`
	var args []interface{}
	if studentID != nil {
		query += ` WHERE sf.student_id = $1`
		args = append(args, *studentID)
	}
	query += ` ORDER BY f.name, f.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return translate(err, op, "")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner uuid.UUID
			m     models.FactorMark
		)
		if err := rows.Scan(&owner, &m.Factor.ID, &m.Factor.Name, &m.Mark); err != nil {
			return translate(err, op, "")
		}
		add(owner, m)
	}
	return translate(rows.Err(), op, "")
}

// FindSummaries retrieves the list projection, optionally filtered by group
func (r *studentRepository) FindSummaries(ctx context.Context, group string) ([]models.StudentSummary, error) {
	const op = "StudentRepository.FindSummaries"

	query := `SELECT id, first_name, last_name, email, course, grp FROM students`
	var args []interface{}
	if group != "" {
		query += ` WHERE grp = $1`
		args = append(args, group)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	summaries := []models.StudentSummary{}
	for rows.Next() {
		var s models.StudentSummary
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Course, &s.Group); err != nil {
			return nil, translate(err, op, "")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return summaries, nil
}

// FindByID retrieves a student with resolved marks
func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	const op = "StudentRepository.FindByID"

	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.id = $1`, id)
	st, err := scanStudent(row)
	if err != nil {
		return nil, translate(err, op, "student not found")
	}

	err = r.loadSubjectMarks(ctx, &id, func(_ uuid.UUID, m models.SubjectMark) {
		st.Subjects = append(st.Subjects, m)
	})
	if err != nil {
		return nil, err
	}
	err = r.loadFactorMarks(ctx, &id, func(_ uuid.UUID, m models.FactorMark) {
		st.Factors = append(st.Factors, m)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// FindByEmail retrieves a student by email without marks
func (r *studentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.email = $1`, strings.ToLower(email))
	st, err := scanStudent(row)
	if err != nil {
		return nil, translate(err, "StudentRepository.FindByEmail", "student not found")
	}
	return st, nil
}

// EmailExists reports whether a student with this email is registered
func (r *studentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)`, strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, translate(err, "StudentRepository.EmailExists", "")
	}
	return exists, nil
}

// Create inserts the student and its marks. Call it inside a transaction
// so a failing mark insert does not leave a partial student behind.
func (r *studentRepository) Create(ctx context.Context, st *models.Student, subjects, factors []models.MarkInput) error {
	const op = "StudentRepository.Create"

	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.Email = strings.ToLower(st.Email)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, first_name, last_name, email, password_hash, course, grp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		st.ID, st.FirstName, st.LastName, st.Email, st.PasswordHash, st.Course, st.Group,
		st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return translate(err, op, "")
	}

	for _, m := range subjects {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO student_subjects (student_id, subject_id, mark) VALUES ($1, $2, $3)`,
			st.ID, m.ID, m.Mark,
		)
		if err != nil {
			return translate(err, op, "")
		}
	}
	for _, m := range factors {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO student_factors (student_id, factor_id, mark) VALUES ($1, $2, $3)`,
			st.ID, m.ID, m.Mark,
		)
		if err != nil {
			return translate(err, op, "")
		}
	}

	return nil
}

// SetResetToken stores a password reset token with its expiry
func (r *studentRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	const op = "StudentRepository.SetResetToken"

	result, err := r.db.ExecContext(ctx,
		`UPDATE students SET reset_token = $2, reset_expires = $3, updated_at = NOW() WHERE id = $1`,
		id, token, expires,
	)
	if err != nil {
		return translate(err, op, "")
	}
	return requireAffected(result, op, "student not found")
}

// FindByResetToken retrieves the student owning a reset token
func (r *studentRepository) FindByResetToken(ctx context.Context, token string) (*models.Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.reset_token = $1`, token)
	st, err := scanStudent(row)
	if err != nil {
		return nil, translate(err, "StudentRepository.FindByResetToken", "reset token not found")
	}
	return st, nil
}

// UpdatePassword replaces the password hash and clears any reset token
func (r *studentRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const op = "StudentRepository.UpdatePassword"

	result, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET password_hash = $2, reset_token = NULL, reset_expires = NULL, updated_at = NOW()
		WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return translate(err, op, "")
	}
	return requireAffected(result, op, "student not found")
}
