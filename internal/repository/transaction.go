package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// transactionManager implements TransactionManager
type transactionManager struct {
	db *sql.DB
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *sql.DB) TransactionManager {
	return &transactionManager{db: db}
}

// WithTransaction executes a function within a database transaction
func (tm *transactionManager) WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	repos := newRepositories(tx, tm)

	if err := fn(repos); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// dbExecutor is an interface that both *sql.DB and *sql.Tx implement
type dbExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func newRepositories(db dbExecutor, tx TransactionManager) *Repositories {
	return &Repositories{
		Student:    NewStudentRepository(db),
		Secretary:  NewSecretaryRepository(db),
		Subject:    NewSubjectRepository(db),
		Factor:     NewFactorRepository(db),
		Profession: NewProfessionRepository(db),
		Speciality: NewSpecialityRepository(db),
		Tx:         tx,
	}
}

// NewRepositories creates a new repository collection
func NewRepositories(db *sql.DB) *Repositories {
	return newRepositories(db, NewTransactionManager(db))
}
