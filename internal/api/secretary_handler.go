package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/scoring"
	"github.com/ajharbinger/profmatch-api/internal/services"
)

// SecretaryHandler serves the secretariat endpoints
type SecretaryHandler struct {
	students services.StudentService
	catalog  services.CatalogService
	matching services.MatchingService
	logger   logger.Logger
}

// NewSecretaryHandler creates a new secretary handler with service injection
func NewSecretaryHandler(svc *services.Services, log logger.Logger) *SecretaryHandler {
	return &SecretaryHandler{
		students: svc.Students,
		catalog:  svc.Catalog,
		matching: svc.Matching,
		logger:   log,
	}
}

// SearchRequest asks for a ranking by subject names or by a profession's subjects.
// Explicit subjects win when both are given.
type SearchRequest struct {
	Subjects     []string   `json:"subjects"`
	ProfessionID *uuid.UUID `json:"professionId"`
}

// RenameRequest carries a new display name
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// BulkRenameRequest maps subject ids to their new names
type BulkRenameRequest struct {
	Map map[uuid.UUID]RenameRequest `json:"map" binding:"required"`
}

// Search ranks every student against the requested subjects
func (h *SecretaryHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Subjects == nil && req.ProfessionID == nil {
		abortWithError(c, http.StatusBadRequest, errors.ErrCodeValidationError, "subjects or professionId is required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		results []scoring.ScoreResult
		err     error
	)
	if req.Subjects != nil {
		results, err = h.matching.ComputeRanking(ctx, req.Subjects)
	} else {
		results, err = h.matching.ComputeRankingForProfession(ctx, *req.ProfessionID)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": results})
}

// GetInitialTable returns the reference data for the search screen
func (h *SecretaryHandler) GetInitialTable(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	table, err := h.catalog.InitialTable(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// GetStudents lists student summaries, optionally filtered by group
func (h *SecretaryHandler) GetStudents(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	students, err := h.students.List(ctx, c.Query("group"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GetStudent returns one student's detail; bad or unknown ids answer 422
func (h *SecretaryHandler) GetStudent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		respondError(c, h.logger, errors.InvalidInput("invalid student id", err), statusOverride{errors.ErrCodeInvalidInput: http.StatusUnprocessableEntity})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	student, err := h.students.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err, statusOverride{errors.ErrCodeNotFound: http.StatusUnprocessableEntity})
		return
	}

	c.JSON(http.StatusOK, student)
}

// CreateStudent registers a student with initial marks
func (h *SecretaryHandler) CreateStudent(c *gin.Context) {
	var draft models.StudentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	student, err := h.students.Create(ctx, &draft)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "student created",
		"id":      student.ID,
	})
}

// RenameSubject updates one subject's name
func (h *SecretaryHandler) RenameSubject(c *gin.Context) {
	h.rename(c, h.catalog.RenameSubject)
}

// RenameFactor updates one factor's name
func (h *SecretaryHandler) RenameFactor(c *gin.Context) {
	h.rename(c, h.catalog.RenameFactor)
}

func (h *SecretaryHandler) rename(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, name string) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, errors.ErrCodeNotFound, "record not found")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := apply(ctx, id, req.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RenameSubjects updates several subject names at once
func (h *SecretaryHandler) RenameSubjects(c *gin.Context) {
	var req BulkRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	names := make(map[uuid.UUID]string, len(req.Map))
	for id, entry := range req.Map {
		if entry.Name == "" {
			abortWithError(c, http.StatusBadRequest, errors.ErrCodeValidationError, "name is required for "+id.String())
			return
		}
		names[id] = entry.Name
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.RenameSubjects(ctx, names); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSpecialities lists the group to faculty mapping
func (h *SecretaryHandler) GetSpecialities(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	specialities, err := h.catalog.Specialities(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"specialities": specialities})
}
