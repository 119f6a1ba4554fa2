package handlers

import (
	"net/http"

	"todo_api/internal/models"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both registration and login.
type credentials struct {
	Email    string `json:"email" binding:"required" example:"new@example.com"`
	Password string `json:"password" binding:"required" example:"newUserPass"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string `json:"id" example:"01J9ZK4S8N4V1W2X3Y4Z5A6B7C"`
	Email string `json:"email" example:"new@example.com"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

// @Summary      Register
// @Description  Creates an account and returns a session token in the x-auth header.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      credentials  true  "Credentials"
// @Success      200   {object}  UserResponse
// @Header       200   {string}  x-auth  "session token"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /users [post]
func (h *Handler) register(c *gin.Context) {
	var input credentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, token, err := h.services.Users.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.writeError(c, err, "user_register_failed", "email", input.Email)
		return
	}

	c.Header(authHeader, token)
	c.JSON(http.StatusOK, userResponse(u))
}

// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      credentials  true  "Credentials"
// @Success      200   {object}  UserResponse
// @Header       200   {string}  x-auth  "session token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /users/login [post]
func (h *Handler) login(c *gin.Context) {
	var input credentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, token, err := h.services.Users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.writeError(c, err, "user_login_failed", "email", input.Email)
		return
	}

	c.Header(authHeader, token)
	c.JSON(http.StatusOK, userResponse(u))
}

// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
// @Security     TokenAuth
func (h *Handler) me(c *gin.Context) {
	u, _ := currentUser(c)
	c.JSON(http.StatusOK, userResponse(u))
}

// @Summary      Logout
// @Description  Revokes the token used for this request.
// @Tags         users
// @Success      200
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /users/me/token [delete]
// @Security     TokenAuth
func (h *Handler) logout(c *gin.Context) {
	u, token := currentUser(c)
	if err := h.services.Users.Logout(c.Request.Context(), u, token); err != nil {
		h.writeError(c, err, "user_logout_failed", "user_id", u.ID)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary      Delete account
// @Description  Removes the account, its todos and every session.
// @Tags         users
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /users/me [delete]
// @Security     TokenAuth
func (h *Handler) deleteAccount(c *gin.Context) {
	u, _ := currentUser(c)
	if err := h.services.Users.DeleteAccount(c.Request.Context(), u); err != nil {
		h.writeError(c, err, "user_delete_failed", "user_id", u.ID)
		return
	}
	c.JSON(http.StatusOK, userResponse(u))
}

// @Summary      Active sessions
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sessions"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /users/me/sessions [get]
// @Security     TokenAuth
func (h *Handler) sessions(c *gin.Context) {
	u, token := currentUser(c)
	list, err := h.services.Users.Sessions(c.Request.Context(), u, token)
	if err != nil {
		h.writeError(c, err, "user_sessions_failed", "user_id", u.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"sessions": list,
	})
}
