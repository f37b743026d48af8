package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/logger"
)

// RequestIDKey is the gin context key holding the per-request id.
const RequestIDKey = "request_id"

// StatusFor maps an error kind to its HTTP status. Conflicts are always 409.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error renders err and aborts the chain. Storage and unclassified errors
// are logged and collapsed into a generic 500.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindStorage || e.Kind == apperr.KindInternal {
		logger.Get().WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("request failed")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "An error occurred",
			"error":   "Internal server error",
		})
		return
	}

	status := StatusFor(e.Kind)
	if e.Kind == apperr.KindValidation {
		c.AbortWithStatusJSON(status, gin.H{
			"message": e.Message,
			"errors":  e.Fields,
		})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{
		"message": e.Message,
		"error":   e.Detail,
	})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
