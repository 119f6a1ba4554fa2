package handlers

import (
	"net/http"

	"todo_api/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Text string `json:"text" example:"walk the dog"`
}

// UpdateTodoRequest is the body of PATCH /todos/:id. Leaving out completed
// (or sending false) reopens the todo.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty" example:"walk the dog twice"`
	Completed *bool   `json:"completed,omitempty" example:"true"`
}

// @Summary      Create todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      CreateTodoRequest  true  "Todo"
// @Success      200   {object}  models.Todo
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /todos [post]
// @Security     TokenAuth
func (h *Handler) createTodo(c *gin.Context) {
	var req CreateTodoRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	u, _ := currentUser(c)

	todo, err := h.services.Todos.Create(c.Request.Context(), u.ID, req.Text)
	if err != nil {
		h.writeError(c, err, "todo_create_failed", "user_id", u.ID)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// @Summary      List todos
// @Tags         todos
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "todos"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /todos [get]
// @Security     TokenAuth
func (h *Handler) listTodos(c *gin.Context) {
	u, _ := currentUser(c)
	todos, err := h.services.Todos.List(c.Request.Context(), u.ID)
	if err != nil {
		h.writeError(c, err, "todo_list_failed", "user_id", u.ID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

// @Summary      Get todo
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo id"
// @Success      200  {object}  map[string]interface{}  "todo"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /todos/{id} [get]
// @Security     TokenAuth
func (h *Handler) getTodo(c *gin.Context) {
	u, _ := currentUser(c)
	id := c.Param("id")
	todo, err := h.services.Todos.Get(c.Request.Context(), u.ID, id)
	if err != nil {
		h.writeError(c, err, "todo_get_failed", "user_id", u.ID, "todo_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// @Summary      Delete todo
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo id"
// @Success      200  {object}  map[string]interface{}  "todo"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /todos/{id} [delete]
// @Security     TokenAuth
func (h *Handler) deleteTodo(c *gin.Context) {
	u, _ := currentUser(c)
	id := c.Param("id")
	todo, err := h.services.Todos.Delete(c.Request.Context(), u.ID, id)
	if err != nil {
		h.writeError(c, err, "todo_delete_failed", "user_id", u.ID, "todo_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// @Summary      Update todo
// @Description  completed=true stamps completed_at; otherwise the todo is reopened and completed_at cleared.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Todo id"
// @Param        body  body      UpdateTodoRequest  true  "Fields to change"
// @Success      200   {object}  map[string]interface{}  "todo"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /todos/{id} [patch]
// @Security     TokenAuth
func (h *Handler) updateTodo(c *gin.Context) {
	var req UpdateTodoRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	u, _ := currentUser(c)
	id := c.Param("id")

	todo, err := h.services.Todos.Update(c.Request.Context(), u.ID, id, service.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		h.writeError(c, err, "todo_update_failed", "user_id", u.ID, "todo_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}
