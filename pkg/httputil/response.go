package httputil

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "request_id"

// RespondWithSuccess sends {"success": true} merged with fields.
func RespondWithSuccess(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// RespondWithMessage is RespondWithSuccess with a user-facing message.
func RespondWithMessage(c *gin.Context, status int, message string, fields gin.H) {
	if fields == nil {
		fields = gin.H{}
	}
	fields["message"] = message
	RespondWithSuccess(c, status, fields)
}

// AbortWithMessage stops the handler chain with a failure body.
func AbortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondWithError maps err to a status and a failure body. Errors that are
// not AppErrors become a generic 500. The cause is exposed as "error" only
// outside release mode.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Error del servidor"
	var cause error = err

	if appErr, ok := apperrors.As(err); ok {
		status = appErr.StatusCode()
		message = appErr.Message
		cause = appErr.Err
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	body := gin.H{
		"success": false,
		"message": message,
	}
	if cause != nil && gin.Mode() != gin.ReleaseMode {
		body["error"] = cause.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// BindJSON decodes the request body into dst. An empty body leaves dst
// untouched so the service reports the missing fields. It responds and
// returns false when the body is not valid JSON.
func BindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		AbortWithMessage(c, http.StatusRequestEntityTooLarge, "Solicitud demasiado grande")
		return false
	}
	RespondWithError(c, apperrors.BadRequest("Formato JSON inválido", err))
	return false
}
