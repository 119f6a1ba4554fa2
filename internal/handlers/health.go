package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// @Summary      Health check
// @Description  Pings the store within the query timeout.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	if err := h.services.Health.Check(c.Request.Context()); err != nil {
		h.log.Errorw("health_check_failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": statusUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
