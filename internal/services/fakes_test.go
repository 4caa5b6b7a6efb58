package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/mailer"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
)

// memStore backs every fake repository with plain maps
type memStore struct {
	mu           sync.Mutex
	students     []models.Student
	secretaries  []models.Secretary
	subjects     []models.Subject
	factors      []models.Factor
	professions  []models.Profession
	specialities []models.Speciality
	failFindAll  error
	failCreate   error
}

func newFakeRepos() (*repository.Repositories, *memStore) {
	st := &memStore{}
	repos := &repository.Repositories{
		Student:    &fakeStudents{st},
		Secretary:  &fakeSecretaries{st},
		Subject:    &fakeSubjects{st},
		Factor:     &fakeFactors{st},
		Profession: &fakeProfessions{st},
		Speciality: &fakeSpecialities{st},
	}
	repos.Tx = &fakeTx{repos: repos}
	return repos, st
}

type fakeTx struct {
	repos *repository.Repositories
}

func (f *fakeTx) WithTransaction(_ context.Context, fn func(*repository.Repositories) error) error {
	return fn(f.repos)
}

type fakeStudents struct{ s *memStore }

func (f *fakeStudents) FindAll(context.Context) ([]models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failFindAll != nil {
		return nil, f.s.failFindAll
	}
	out := make([]models.Student, len(f.s.students))
	copy(out, f.s.students)
	return out, nil
}

func (f *fakeStudents) FindSummaries(_ context.Context, group string) ([]models.StudentSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.StudentSummary{}
	for _, st := range f.s.students {
		if group != "" && st.Group != group {
			continue
		}
		out = append(out, models.StudentSummary{
			ID: st.ID, FirstName: st.FirstName, LastName: st.LastName,
			Email: st.Email, Course: st.Course, Group: st.Group,
		})
	}
	return out, nil
}

func (f *fakeStudents) find(match func(*models.Student) bool) (*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.students {
		if match(&f.s.students[i]) {
			st := f.s.students[i]
			return &st, nil
		}
	}
	return nil, errors.NotFound("student not found", nil)
}

func (f *fakeStudents) FindByID(_ context.Context, id uuid.UUID) (*models.Student, error) {
	return f.find(func(st *models.Student) bool { return st.ID == id })
}

func (f *fakeStudents) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	return f.find(func(st *models.Student) bool { return strings.EqualFold(st.Email, email) })
}

func (f *fakeStudents) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStudents) Create(_ context.Context, st *models.Student, subjects, factors []models.MarkInput) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failCreate != nil {
		return f.s.failCreate
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	for _, m := range subjects {
		found := false
		for _, sub := range f.s.subjects {
			if sub.ID == m.ID {
				st.Subjects = append(st.Subjects, models.SubjectMark{Subject: sub, Mark: m.Mark})
				found = true
			}
		}
		if !found {
			return errors.ValidationError("referenced record does not exist", nil)
		}
	}
	for _, m := range factors {
		for _, fac := range f.s.factors {
			if fac.ID == m.ID {
				st.Factors = append(st.Factors, models.FactorMark{Factor: fac, Mark: m.Mark})
			}
		}
	}
	f.s.students = append(f.s.students, *st)
	return nil
}

func (f *fakeStudents) update(id uuid.UUID, fn func(*models.Student)) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.students {
		if f.s.students[i].ID == id {
			fn(&f.s.students[i])
			return nil
		}
	}
	return errors.NotFound("student not found", nil)
}

func (f *fakeStudents) SetResetToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	return f.update(id, func(st *models.Student) {
		st.ResetToken = token
		st.ResetExpires = &expires
	})
}

func (f *fakeStudents) FindByResetToken(_ context.Context, token string) (*models.Student, error) {
	return f.find(func(st *models.Student) bool { return token != "" && st.ResetToken == token })
}

func (f *fakeStudents) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.update(id, func(st *models.Student) {
		st.PasswordHash = hash
		st.ResetToken = ""
		st.ResetExpires = nil
	})
}

type fakeSecretaries struct{ s *memStore }

func (f *fakeSecretaries) FindByEmail(_ context.Context, email string) (*models.Secretary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, sec := range f.s.secretaries {
		if strings.EqualFold(sec.Email, email) {
			out := sec
			return &out, nil
		}
	}
	return nil, errors.NotFound("secretary not found", nil)
}

func (f *fakeSecretaries) Create(_ context.Context, sec *models.Secretary) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if sec.ID == uuid.Nil {
		sec.ID = uuid.New()
	}
	f.s.secretaries = append(f.s.secretaries, *sec)
	return nil
}

type fakeSubjects struct{ s *memStore }

func (f *fakeSubjects) FindAll(context.Context) ([]models.Subject, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]models.Subject{}, f.s.subjects...), nil
}

func (f *fakeSubjects) FindByID(_ context.Context, id uuid.UUID) (*models.Subject, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, sub := range f.s.subjects {
		if sub.ID == id {
			out := sub
			return &out, nil
		}
	}
	return nil, errors.NotFound("subject not found", nil)
}

func (f *fakeSubjects) Create(_ context.Context, sub *models.Subject) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.s.subjects = append(f.s.subjects, *sub)
	return nil
}

func (f *fakeSubjects) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.subjects {
		if f.s.subjects[i].ID == id {
			f.s.subjects[i].Name = name
			return nil
		}
	}
	return errors.NotFound("subject not found", nil)
}

type fakeFactors struct{ s *memStore }

func (f *fakeFactors) FindAll(context.Context) ([]models.Factor, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]models.Factor{}, f.s.factors...), nil
}

func (f *fakeFactors) FindByID(_ context.Context, id uuid.UUID) (*models.Factor, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, fac := range f.s.factors {
		if fac.ID == id {
			out := fac
			return &out, nil
		}
	}
	return nil, errors.NotFound("factor not found", nil)
}

func (f *fakeFactors) Create(_ context.Context, fac *models.Factor) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if fac.ID == uuid.Nil {
		fac.ID = uuid.New()
	}
	f.s.factors = append(f.s.factors, *fac)
	return nil
}

func (f *fakeFactors) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.factors {
		if f.s.factors[i].ID == id {
			f.s.factors[i].Name = name
			return nil
		}
	}
	return errors.NotFound("factor not found", nil)
}

type fakeProfessions struct{ s *memStore }

func (f *fakeProfessions) FindAll(context.Context) ([]models.Profession, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]models.Profession{}, f.s.professions...), nil
}

func (f *fakeProfessions) FindByID(_ context.Context, id uuid.UUID) (*models.Profession, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.professions {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, errors.NotFound("profession not found", nil)
}

func (f *fakeProfessions) Create(_ context.Context, p *models.Profession) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.s.professions = append(f.s.professions, *p)
	return nil
}

type fakeSpecialities struct{ s *memStore }

func (f *fakeSpecialities) FindAll(context.Context) ([]models.Speciality, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]models.Speciality{}, f.s.specialities...), nil
}

func (f *fakeSpecialities) Upsert(_ context.Context, sp *models.Speciality) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.specialities {
		if f.s.specialities[i].Group == sp.Group {
			f.s.specialities[i].Faculty = sp.Faculty
			return nil
		}
	}
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	f.s.specialities = append(f.s.specialities, *sp)
	return nil
}

// recordingMailer captures sent messages and can be told to fail
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, fmt.Sprintf("%s|%s", msg.To, msg.Text))
	return nil
}
