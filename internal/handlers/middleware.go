package handlers

import (
	"todo_api/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	authHeader = "x-auth"

	ctxUserKey  = "user"
	ctxTokenKey = "token"
)

// authMiddleware resolves the x-auth header to a user or aborts the request.
func (h *Handler) authMiddleware(c *gin.Context) {
	h.authenticate(c, c.GetHeader(authHeader))
}

// feedAuthMiddleware also accepts the token as a query parameter.
func (h *Handler) feedAuthMiddleware(c *gin.Context) {
	raw := c.GetHeader(authHeader)
	if raw == "" {
		raw = c.Query("token")
	}
	h.authenticate(c, raw)
}

func (h *Handler) authenticate(c *gin.Context, raw string) {
	u, err := h.services.Users.FindByToken(c.Request.Context(), raw)
	if err != nil {
		h.abortWithError(c, err, "auth_rejected")
		return
	}

	// store in Gin context
	c.Set(ctxUserKey, u)
	c.Set(ctxTokenKey, raw)
	c.Next()
}

// currentUser returns what authMiddleware stored. Only valid behind it.
func currentUser(c *gin.Context) (*models.User, string) {
	u, _ := c.Get(ctxUserKey)
	user, _ := u.(*models.User)
	return user, c.GetString(ctxTokenKey)
}
