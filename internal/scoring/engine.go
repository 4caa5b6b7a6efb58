package scoring

import (
	"math"
	"sort"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/models"
)

// Weight is applied to every matching mark before the square root.
const Weight = 0.2

// ScoreResult pairs a student with the computed match score
type ScoreResult struct {
	Student models.Student `json:"student"`
	Result  float64        `json:"result"`
}

// SubjectSet is the set of subject names a ranking is requested for.
// Names are compared by exact string equality.
type SubjectSet map[string]struct{}

// NewSubjectSet builds a set from a list of names; duplicates collapse
func NewSubjectSet(names []string) SubjectSet {
	set := make(SubjectSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is requested
func (s SubjectSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// ScoringEngine ranks students against a requested subject set
type ScoringEngine struct{}

// NewScoringEngine creates a new scoring engine instance
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// Score computes one student's result: sqrt of the weighted sum of the
// marks whose subject name is requested.
func (e *ScoringEngine) Score(student models.Student, requested SubjectSet) float64 {
	var sum float64
	for _, sm := range student.Subjects {
		if requested.Contains(sm.Subject.Name) {
			sum += sm.Mark * Weight
		}
	}
	if sum <= 0 {
		return 0
	}
	return math.Sqrt(sum)
}

// Rank scores every student in the population and returns the results
// sorted ascending by result. Equal results keep population order.
func (e *ScoringEngine) Rank(population []models.Student, requested SubjectSet) ([]ScoreResult, error) {
	if len(population) == 0 {
		return nil, errors.NotFound("no students found", nil).WithOperation("Rank")
	}

	results := make([]ScoreResult, len(population))
	for i, student := range population {
		results[i] = ScoreResult{
			Student: student,
			Result:  e.Score(student, requested),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result < results[j].Result
	})

	return results, nil
}
