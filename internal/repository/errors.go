package repository

import (
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/ajharbinger/profmatch-api/internal/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// StudentEmailConstraint is the unique constraint on students.email; a
// Conflict carrying it in Details means the email is taken.
const StudentEmailConstraint = "students_email_key"

// translate converts driver errors into application errors.
// notFound is used for sql.ErrNoRows.
func translate(err error, op, notFound string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(notFound, err).WithOperation(op)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return errors.Conflict("record already exists", err).
				WithOperation(op).
				WithDetails(pqErr.Constraint)
		case pqForeignKeyViolation:
			return errors.ValidationError("referenced record does not exist", err).
				WithOperation(op).
				WithDetails(pqErr.Constraint)
		}
	}

	return errors.DatabaseError("database operation failed", err).WithOperation(op)
}

// requireAffected returns NotFound when an update touched no rows
func requireAffected(result sql.Result, op, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to get rows affected", err).WithOperation(op)
	}
	if n == 0 {
		return errors.NotFound(notFound, nil).WithOperation(op)
	}
	return nil
}
