package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("no students", nil), http.StatusNotFound},
		{"validation", ValidationError("bad email", nil), http.StatusBadRequest},
		{"conflict", Conflict("email taken", nil), http.StatusBadRequest},
		{"unauthorized", Unauthorized("bad token", nil), http.StatusUnauthorized},
		{"forbidden", Forbidden("already signed in", nil), http.StatusForbidden},
		{"database", DatabaseError("query failed", nil), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("inner", nil)), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := DatabaseError("failed to list students", cause).WithOperation("FindAll")

	assert.Contains(t, err.Error(), "DATABASE_ERROR")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "FindAll", err.Operation)
}

func TestAppError_Body(t *testing.T) {
	body := InvalidInput("invalid student id", nil).Body()
	assert.Equal(t, map[string]interface{}{
		"message": "invalid student id",
		"code":    ErrCodeInvalidInput,
		"error":   true,
	}, body)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NotFound("x", nil))))
	assert.False(t, IsNotFound(Conflict("x", nil)))
	assert.False(t, IsNotFound(nil))
}
