package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// requestID keeps a client supplied id only when it is short printable ASCII.
func requestID(in string) string {
	if in == "" || len(in) > maxRequestIDLen {
		return uuid.NewString()
	}
	for i := 0; i < len(in); i++ {
		if in[i] < '!' || in[i] > '~' {
			return uuid.NewString()
		}
	}
	return in
}

// requestLogger propagates or assigns a request id, then logs and measures
// the request once it completes.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()

	rid := requestID(c.GetHeader(requestIDHeader))
	c.Header(requestIDHeader, rid)

	c.Next()

	latency := time.Since(start)
	status := c.Writer.Status()
	route := c.FullPath()
	h.metrics.ObserveRequest(c.Request.Method, route, status, latency)
	h.log.Infow("http_request",
		"request_id", rid,
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"latency", latency,
		"client_ip", c.ClientIP(),
	)
}
