package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/services"
)

// StudentHandler serves endpoints for signed-in students
type StudentHandler struct {
	students services.StudentService
	logger   logger.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students services.StudentService, log logger.Logger) *StudentHandler {
	return &StudentHandler{students: students, logger: log}
}

// GetProfile returns the caller's own record
func (h *StudentHandler) GetProfile(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		respondError(c, h.logger, errors.Unauthorized("Authentication required", nil))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	student, err := h.students.Profile(ctx, claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, student)
}
