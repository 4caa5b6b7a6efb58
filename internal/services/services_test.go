package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/repository"
	"github.com/ajharbinger/profmatch-api/pkg/config"
)

type fixture struct {
	svc    *Services
	store  *memStore
	mail   *recordingMailer
	keys   *auth.Keyring
	logs   *observer.ObservedLogs
	now    time.Time
	config *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, store := newFakeRepos()
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		store: store,
		mail:  &recordingMailer{},
		keys:  auth.NewKeyring("student-secret", "secretary-secret", time.Hour),
		logs:  logs,
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		config: &config.Config{
			ResetTokenTTL: time.Hour,
			ResetURLBase:  "https://uni.example/confirm",
		},
	}
	f.svc = NewServices(Dependencies{
		Repos:  repos,
		Keys:   f.keys,
		Mailer: f.mail,
		Logger: logger.FromZap(zap.New(core)),
		Config: f.config,
		Clock:  func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) addStudent(t *testing.T, email, password string, marks map[string]float64) models.Student {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	st := models.Student{ID: uuid.New(), FirstName: "F", LastName: "L", Email: email, PasswordHash: hash, Course: 1, Group: "G-1"}
	for name, mark := range marks {
		st.Subjects = append(st.Subjects, models.SubjectMark{Subject: models.Subject{ID: uuid.New(), Name: name}, Mark: mark})
	}
	f.store.students = append(f.store.students, st)
	return st
}

func (f *fixture) addSecretary(t *testing.T, email, password string) models.Secretary {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	sec := models.Secretary{ID: uuid.New(), FirstName: "Office", Email: email, PasswordHash: hash}
	f.store.secretaries = append(f.store.secretaries, sec)
	return sec
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sec := f.addSecretary(t, "shared@uni.edu", "secretary-pass")
	f.addStudent(t, "shared@uni.edu", "student-pass", nil)
	kid := f.addStudent(t, "kid@uni.edu", "student-pass", nil)

	t.Run("secretary wins on shared email", func(t *testing.T) {
		resp, err := f.svc.Auth.Login(ctx, "shared@uni.edu", "secretary-pass")
		require.NoError(t, err)
		assert.Equal(t, models.RoleSecretary, resp.Role)
		assert.Equal(t, sec.ID.String(), resp.UserID)

		claims, err := f.keys.Validate(resp.Token, models.RoleSecretary)
		require.NoError(t, err)
		assert.Equal(t, sec.ID, claims.UserID)
	})

	t.Run("student", func(t *testing.T) {
		resp, err := f.svc.Auth.Login(ctx, "kid@uni.edu", "student-pass")
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, resp.Role)
		assert.Equal(t, kid.ID.String(), resp.UserID)

		_, err = f.keys.Validate(resp.Token, models.RoleSecretary)
		assert.Error(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Auth.Login(ctx, "ghost@uni.edu", "whatever")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Auth.Login(ctx, "kid@uni.edu", "nope")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
		assert.Contains(t, err.Error(), "passwords do not match")
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addStudent(t, "kid@uni.edu", "student-pass", nil)

	require.NoError(t, f.svc.Auth.ForgotPassword(ctx, "kid@uni.edu"))

	stored := f.store.students[0]
	require.NotEmpty(t, stored.ResetToken)
	require.NotNil(t, stored.ResetExpires)
	assert.Equal(t, f.now.Add(time.Hour), *stored.ResetExpires)

	require.Len(t, f.mail.sent, 1)
	assert.True(t, strings.HasPrefix(f.mail.sent[0], kid.Email+"|"))
	assert.Contains(t, f.mail.sent[0], "https://uni.example/confirm/"+stored.ResetToken)

	err := f.svc.Auth.ForgotPassword(ctx, "ghost@uni.edu")
	assert.True(t, errors.IsNotFound(err))
}

func TestAuthService_ForgotPasswordSendFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.mail.err = fmt.Errorf("smtp down")
	f.addStudent(t, "kid@uni.edu", "student-pass", nil)

	require.NoError(t, f.svc.Auth.ForgotPassword(context.Background(), "kid@uni.edu"))

	assert.NotEmpty(t, f.store.students[0].ResetToken)
	entries := f.logs.FilterMessage("failed to send reset email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "smtp down", entries[0].ContextMap()["error"])
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addStudent(t, "kid@uni.edu", "old-pass", nil)

	require.NoError(t, f.svc.Auth.ForgotPassword(ctx, "kid@uni.edu"))
	token := f.store.students[0].ResetToken

	t.Run("unknown token", func(t *testing.T) {
		err := f.svc.Auth.ResetPassword(ctx, "not-a-token", "new-pass")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("expired token", func(t *testing.T) {
		saved := f.now
		f.now = f.now.Add(2 * time.Hour)
		defer func() { f.now = saved }()

		err := f.svc.Auth.ResetPassword(ctx, token, "new-pass")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationError))
	})

	t.Run("valid token", func(t *testing.T) {
		require.NoError(t, f.svc.Auth.ResetPassword(ctx, token, "new-pass"))

		st := f.store.students[0]
		assert.Empty(t, st.ResetToken)
		assert.True(t, auth.CheckPassword("new-pass", st.PasswordHash))

		_, err := f.svc.Auth.Login(ctx, "kid@uni.edu", "new-pass")
		assert.NoError(t, err)
	})
}

func TestStudentService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	math := models.Subject{ID: uuid.New(), Name: "Math"}
	f.store.subjects = append(f.store.subjects, math)

	draft := &models.StudentDraft{
		FirstName: "Ada", LastName: "L", Email: "ada@uni.edu", Password: "secret1",
		Course: 2, Group: "CS-21",
		Subjects: []models.MarkInput{{ID: math.ID, Mark: 90}},
	}
	st, err := f.svc.Students.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, st.ID)
	assert.True(t, auth.CheckPassword("secret1", st.PasswordHash))
	require.Len(t, st.Subjects, 1)
	assert.Equal(t, "Math", st.Subjects[0].Subject.Name)

	_, err = f.svc.Students.Create(ctx, draft)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	assert.Len(t, f.store.students, 1)
}

func TestStudentService_CreateDuplicateMarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	math := models.Subject{ID: uuid.New(), Name: "Math"}
	f.store.subjects = append(f.store.subjects, math)

	draft := &models.StudentDraft{
		FirstName: "Ada", LastName: "L", Email: "ada@uni.edu", Password: "secret1",
		Course: 2, Group: "CS-21",
		Subjects: []models.MarkInput{{ID: math.ID, Mark: 90}, {ID: math.ID, Mark: 60}},
	}
	_, err := f.svc.Students.Create(ctx, draft)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationError))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(err))
	assert.Empty(t, f.store.students)

	factor := uuid.New()
	draft.Subjects = nil
	draft.Factors = []models.MarkInput{{ID: factor, Mark: 1}, {ID: factor, Mark: 2}}
	_, err = f.svc.Students.Create(ctx, draft)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate factor", appErr.Message)
}

func TestStudentService_CreateConflictOnlyForEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := &models.StudentDraft{
		FirstName: "Ada", LastName: "L", Email: "ada@uni.edu", Password: "secret1",
		Course: 2, Group: "CS-21",
	}

	f.store.failCreate = errors.Conflict("record already exists", nil).WithDetails("student_subjects_pkey")
	_, err := f.svc.Students.Create(ctx, draft)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "record already exists", appErr.Message)

	f.store.failCreate = errors.Conflict("record already exists", nil).WithDetails(repository.StudentEmailConstraint)
	_, err = f.svc.Students.Create(ctx, draft)
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "current user already exists", appErr.Message)
}

func TestStudentService_ListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Students.List(ctx, "")
	assert.True(t, errors.IsNotFound(err))

	kid := f.addStudent(t, "kid@uni.edu", "pass12", map[string]float64{"Math": 80})

	list, err := f.svc.Students.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.Students.List(ctx, "other-group")
	assert.True(t, errors.IsNotFound(err))

	got, err := f.svc.Students.Get(ctx, kid.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.PasswordHash)
	assert.Len(t, got.Subjects, 1)

	_, err = f.svc.Students.Get(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))

	profile, err := f.svc.Students.Profile(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, "kid@uni.edu", profile.Email)
	assert.Empty(t, profile.PasswordHash)
}

func TestCatalogService_InitialTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Catalog.InitialTable(ctx)
	assert.True(t, errors.IsNotFound(err))

	f.store.subjects = []models.Subject{{ID: uuid.New(), Name: "Math"}}
	_, err = f.svc.Catalog.InitialTable(ctx)
	assert.True(t, errors.IsNotFound(err), "factors are still empty")

	f.store.factors = []models.Factor{{ID: uuid.New(), Name: "Olympiad"}}
	f.store.professions = []models.Profession{{ID: uuid.New(), Name: "Engineer"}}

	table, err := f.svc.Catalog.InitialTable(ctx)
	require.NoError(t, err)
	assert.Len(t, table.Subjects, 1)
	assert.Len(t, table.Factors, 1)
	assert.Len(t, table.Variants, 1)
	assert.Empty(t, table.Specialities)
}

func TestCatalogService_Rename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	math := models.Subject{ID: uuid.New(), Name: "Math"}
	physics := models.Subject{ID: uuid.New(), Name: "Physics"}
	f.store.subjects = []models.Subject{math, physics}
	olympiad := models.Factor{ID: uuid.New(), Name: "Olympiad"}
	f.store.factors = []models.Factor{olympiad}

	require.NoError(t, f.svc.Catalog.RenameSubject(ctx, math.ID, "Mathematics"))
	assert.Equal(t, "Mathematics", f.store.subjects[0].Name)
	assert.True(t, errors.IsNotFound(f.svc.Catalog.RenameSubject(ctx, uuid.New(), "x")))

	require.NoError(t, f.svc.Catalog.RenameFactor(ctx, olympiad.ID, "Competition"))
	assert.Equal(t, "Competition", f.store.factors[0].Name)
	assert.True(t, errors.IsNotFound(f.svc.Catalog.RenameFactor(ctx, uuid.New(), "x")))

	err := f.svc.Catalog.RenameSubjects(ctx, map[uuid.UUID]string{
		physics.ID: "Physics I",
		uuid.New(): "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Physics I", f.store.subjects[1].Name)

	err = f.svc.Catalog.RenameSubjects(ctx, map[uuid.UUID]string{uuid.New(): "nothing"})
	assert.True(t, errors.IsNotFound(err))

	err = f.svc.Catalog.RenameSubjects(ctx, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationError))
}

func TestMatchingService_ComputeRanking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Matching.ComputeRanking(ctx, []string{"Math"})
	assert.True(t, errors.IsNotFound(err))

	strong := f.addStudent(t, "a@uni.edu", "pass12", map[string]float64{"Math": 100, "Art": 50})
	weak := f.addStudent(t, "b@uni.edu", "pass12", map[string]float64{"Math": 20})
	none := f.addStudent(t, "c@uni.edu", "pass12", nil)

	results, err := f.svc.Matching.ComputeRanking(ctx, []string{"Math"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, none.ID, results[0].Student.ID)
	assert.Equal(t, 0.0, results[0].Result)
	assert.Equal(t, weak.ID, results[1].Student.ID)
	assert.InDelta(t, 2.0, results[1].Result, 1e-9)
	assert.Equal(t, strong.ID, results[2].Student.ID)
	assert.InDelta(t, 4.4721359, results[2].Result, 1e-6)

	f.store.failFindAll = fmt.Errorf("connection reset")
	_, err = f.svc.Matching.ComputeRanking(ctx, []string{"Math"})
	assert.EqualError(t, err, "connection reset")
}

func TestMatchingService_ComputeRankingForProfession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addStudent(t, "a@uni.edu", "pass12", map[string]float64{"Art": 45})
	engineer := models.Profession{
		ID:       uuid.New(),
		Name:     "Engineer",
		Subjects: []models.Subject{{ID: uuid.New(), Name: "Art"}},
	}
	f.store.professions = append(f.store.professions, engineer)

	results, err := f.svc.Matching.ComputeRankingForProfession(ctx, engineer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 3.0, results[0].Result, 1e-9)

	_, err = f.svc.Matching.ComputeRankingForProfession(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))
}
