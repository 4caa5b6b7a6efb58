// Package seed loads reference data (subjects, factors, professions and
// specialities) from a YAML file into the database.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

// Catalog is the on-disk seed format
type Catalog struct {
	Subjects     []string          `yaml:"subjects"`
	Factors      []string          `yaml:"factors"`
	Professions  []ProfessionEntry `yaml:"professions"`
	Specialities []SpecialityEntry `yaml:"specialities"`
}

// ProfessionEntry references its subjects by name
type ProfessionEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Subjects    []string `yaml:"subjects"`
}

// SpecialityEntry maps a group to a faculty
type SpecialityEntry struct {
	Group   string `yaml:"group"`
	Faculty string `yaml:"faculty"`
}

// Result counts what Apply created
type Result struct {
	Subjects     int
	Factors      int
	Professions  int
	Specialities int
}

// Load decodes and validates a seed file
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks names are present and professions only reference known subjects
func (c *Catalog) Validate() error {
	known := make(map[string]struct{}, len(c.Subjects))
	for i, name := range c.Subjects {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("subjects[%d]: empty name", i)
		}
		known[name] = struct{}{}
	}
	for i, name := range c.Factors {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("factors[%d]: empty name", i)
		}
	}
	for i, p := range c.Professions {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("professions[%d]: empty name", i)
		}
		for _, s := range p.Subjects {
			if _, ok := known[s]; !ok {
				return fmt.Errorf("profession %q references unknown subject %q", p.Name, s)
			}
		}
	}
	for i, s := range c.Specialities {
		if s.Group == "" || s.Faculty == "" {
			return fmt.Errorf("specialities[%d]: group and faculty are required", i)
		}
	}
	return nil
}

// Apply writes the catalog in one transaction. Subjects, factors and
// professions that already exist by name are reused; specialities are upserted.
func Apply(ctx context.Context, repos *repository.Repositories, c *Catalog) (*Result, error) {
	var res Result
	err := repos.Tx.WithTransaction(ctx, func(tx *repository.Repositories) error {
		subjects, err := tx.Subject.FindAll(ctx)
		if err != nil {
			return err
		}
		byName := make(map[string]models.Subject, len(subjects))
		for _, s := range subjects {
			byName[s.Name] = s
		}
		for _, name := range c.Subjects {
			if _, ok := byName[name]; ok {
				continue
			}
			s := models.Subject{Name: name}
			if err := tx.Subject.Create(ctx, &s); err != nil {
				return err
			}
			byName[name] = s
			res.Subjects++
		}

		factors, err := tx.Factor.FindAll(ctx)
		if err != nil {
			return err
		}
		haveFactor := make(map[string]bool, len(factors))
		for _, f := range factors {
			haveFactor[f.Name] = true
		}
		for _, name := range c.Factors {
			if haveFactor[name] {
				continue
			}
			if err := tx.Factor.Create(ctx, &models.Factor{Name: name}); err != nil {
				return err
			}
			haveFactor[name] = true
			res.Factors++
		}

		professions, err := tx.Profession.FindAll(ctx)
		if err != nil {
			return err
		}
		haveProfession := make(map[string]bool, len(professions))
		for _, p := range professions {
			haveProfession[p.Name] = true
		}
		for _, entry := range c.Professions {
			if haveProfession[entry.Name] {
				continue
			}
			p := models.Profession{Name: entry.Name, Description: entry.Description}
			for _, name := range entry.Subjects {
				p.Subjects = append(p.Subjects, byName[name])
			}
			if err := tx.Profession.Create(ctx, &p); err != nil {
				return err
			}
			haveProfession[entry.Name] = true
			res.Professions++
		}

		for _, entry := range c.Specialities {
			if err := tx.Speciality.Upsert(ctx, &models.Speciality{Group: entry.Group, Faculty: entry.Faculty}); err != nil {
				return err
			}
			res.Specialities++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
