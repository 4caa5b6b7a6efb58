package models

import (
	"github.com/google/uuid"
)

// Subject is an academic subject students are graded in
type Subject struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Factor is a weighting category attached to students alongside subjects
type Factor struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Profession is a target profession with the subjects relevant to it
type Profession struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Subjects    []Subject `json:"subjects"`
}

// SubjectNames returns the names of the profession's subjects
func (p *Profession) SubjectNames() []string {
	names := make([]string, 0, len(p.Subjects))
	for _, s := range p.Subjects {
		names = append(names, s.Name)
	}
	return names
}

// Speciality maps a study group to its faculty
type Speciality struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Group   string    `json:"group" db:"grp"`
	Faculty string    `json:"faculty" db:"faculty"`
}
