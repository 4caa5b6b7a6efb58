package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/errors"
	"github.com/ajharbinger/profmatch-api/internal/logger"
)

const defaultRequestTimeout = 10 * time.Second

// requestContext bounds a handler's service calls by the request lifetime
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), defaultRequestTimeout)
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   bool   `json:"error"`
}

// statusOverride remaps the default status of an error code for one endpoint
type statusOverride map[string]int

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Message: message, Code: code, Error: true})
}

// respondError writes err as JSON. AppErrors keep their message; anything else
// is reported as an internal error and logged.
func respondError(c *gin.Context, log logger.Logger, err error, overrides ...statusOverride) {
	appErr, ok := errors.As(err)
	if !ok {
		log.Error("unhandled request error", err, "path", c.FullPath())
		abortWithError(c, http.StatusInternalServerError, errors.ErrCodeInternalError, "internal server error")
		return
	}

	status := errors.HTTPStatus(appErr)
	for _, o := range overrides {
		if s, found := o[appErr.Code]; found {
			status = s
		}
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Error("request failed", err, "path", c.FullPath(), "operation", appErr.Operation)
		message = "internal server error"
	}
	abortWithError(c, status, appErr.Code, message)
}

// respondBindError reports a malformed or invalid request body
func respondBindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, errors.ErrCodeValidationError, "invalid request: "+err.Error())
}
