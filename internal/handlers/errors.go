package handlers

import (
	"net/http"

	"todo_api/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	errInternal    = "internal server error"
	errUnavailable = "service temporarily unavailable"
	errInvalidBody = "invalid body: "
)

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage never leaks unclassified error text to clients.
func userMessage(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindUnknown:
		return errInternal
	case apperr.KindUnavailable:
		return errUnavailable
	default:
		return apperr.Message(err)
	}
}

// writeError logs err under logKey and writes the matching JSON error.
// Client mistakes are logged at info, server-side failures at error.
func (h *Handler) writeError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	status := statusFor(err)
	fields := append([]interface{}{"err", err, "status", status}, kv...)
	if status >= http.StatusInternalServerError {
		h.log.Errorw(logKey, fields...)
	} else {
		h.log.Infow(logKey, fields...)
	}
	c.JSON(status, gin.H{"error": userMessage(err)})
}

func (h *Handler) abortWithError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	h.writeError(c, err, logKey, kv...)
	c.Abort()
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled, true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + err.Error()})
		return false
	}
	return true
}
