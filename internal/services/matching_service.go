package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/repository"
	"github.com/ajharbinger/profmatch-api/internal/scoring"
)

type matchingServiceImpl struct {
	repos  *repository.Repositories
	engine *scoring.ScoringEngine
	logger logger.Logger
}

func newMatchingService(deps Dependencies) MatchingService {
	return &matchingServiceImpl{
		repos:  deps.Repos,
		engine: scoring.NewScoringEngine(),
		logger: deps.Logger,
	}
}

// ComputeRanking loads the current population and ranks it against the names
func (s *matchingServiceImpl) ComputeRanking(ctx context.Context, subjectNames []string) ([]scoring.ScoreResult, error) {
	population, err := s.repos.Student.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.Rank(population, scoring.NewSubjectSet(subjectNames))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("ranking computed", "students", len(results), "subjects", len(subjectNames))
	return results, nil
}

// ComputeRankingForProfession ranks against the subjects linked to a profession
func (s *matchingServiceImpl) ComputeRankingForProfession(ctx context.Context, professionID uuid.UUID) ([]scoring.ScoreResult, error) {
	profession, err := s.repos.Profession.FindByID(ctx, professionID)
	if err != nil {
		return nil, err
	}
	return s.ComputeRanking(ctx, profession.SubjectNames())
}
