package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

type catalogServiceImpl struct {
	repos  *repository.Repositories
	logger logger.Logger
}

func newCatalogService(deps Dependencies) CatalogService {
	return &catalogServiceImpl{repos: deps.Repos, logger: deps.Logger}
}

// InitialTable loads subjects, factors, professions and specialities concurrently
func (s *catalogServiceImpl) InitialTable(ctx context.Context) (*InitialTable, error) {
	var table InitialTable

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table.Subjects, err = s.repos.Subject.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		table.Factors, err = s.repos.Factor.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		table.Variants, err = s.repos.Profession.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		table.Specialities, err = s.repos.Speciality.FindAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(table.Subjects) == 0 || len(table.Factors) == 0 {
		return nil, errors.NotFound("no data found", nil).WithOperation("InitialTable")
	}
	return &table, nil
}

// Specialities lists the group to faculty mapping
func (s *catalogServiceImpl) Specialities(ctx context.Context) ([]models.Speciality, error) {
	return s.repos.Speciality.FindAll(ctx)
}

func (s *catalogServiceImpl) RenameSubject(ctx context.Context, id uuid.UUID, name string) error {
	if err := s.repos.Subject.UpdateName(ctx, id, name); err != nil {
		return err
	}
	s.logger.Info("subject renamed", "subject_id", id.String(), "name", name)
	return nil
}

// RenameSubjects renames several subjects in one transaction. Unknown ids are
// skipped; NotFound only when none of them exist.
func (s *catalogServiceImpl) RenameSubjects(ctx context.Context, names map[uuid.UUID]string) error {
	if len(names) == 0 {
		return errors.ValidationError("no subjects to update", nil).WithOperation("RenameSubjects")
	}

	updated := 0
	err := s.repos.Tx.WithTransaction(ctx, func(tx *repository.Repositories) error {
		for id, name := range names {
			err := tx.Subject.UpdateName(ctx, id, name)
			if errors.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			updated++
		}
		if updated == 0 {
			return errors.NotFound("no subjects were found", nil).WithOperation("RenameSubjects")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("subjects renamed", "count", updated)
	return nil
}

func (s *catalogServiceImpl) RenameFactor(ctx context.Context, id uuid.UUID, name string) error {
	if err := s.repos.Factor.UpdateName(ctx, id, name); err != nil {
		return err
	}
	s.logger.Info("factor renamed", "factor_id", id.String(), "name", name)
	return nil
}
